package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BM25.K1 != 1.5 || cfg.BM25.B != 0.75 {
		t.Fatalf("unexpected bm25 defaults: %+v", cfg.BM25)
	}
	if cfg.Fusion.RRFK != 60 {
		t.Fatalf("expected rrf_k default 60, got %d", cfg.Fusion.RRFK)
	}
	if cfg.Dense.BatchSize != 32 {
		t.Fatalf("expected dense batch size default 32, got %d", cfg.Dense.BatchSize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BM25_K1", "1.2")
	t.Setenv("RRF_K", "30")
	t.Setenv("DENSE_BATCH_SIZE", "16")
	t.Setenv("DENSE_DEVICE", "cuda")
	t.Setenv("PERSIST_INGESTED_CONTENT", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BM25.K1 != 1.2 {
		t.Fatalf("expected bm25_k1=1.2, got %v", cfg.BM25.K1)
	}
	if cfg.Fusion.RRFK != 30 {
		t.Fatalf("expected rrf_k=30, got %d", cfg.Fusion.RRFK)
	}
	if cfg.Dense.BatchSize != 16 {
		t.Fatalf("expected dense batch size 16, got %d", cfg.Dense.BatchSize)
	}
	if cfg.Dense.Device != DeviceCUDA {
		t.Fatalf("expected device cuda, got %s", cfg.Dense.Device)
	}
	if cfg.Ingest.PersistIngestedContent {
		t.Fatalf("expected persist_ingested_content=false")
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		for _, k := range []string{"BM25_", "RRF_", "TOP_K", "K_FANOUT", "DENSE_", "GRAPH_", "EMBEDDING_", "PER_RETRIEVER", "PERSIST_", "CHUNK_JOURNAL", "LANGUAGE_DEFAULT", "CACHE_", "REDIS_", "EVENTS_", "KAFKA_", "SERVICE_NAME", "ENVIRONMENT", "OTLP_", "LOG_"} {
			if len(kv) >= len(k) && kv[:len(k)] == k {
				name := kv
				if idx := indexOf(kv, '='); idx >= 0 {
					name = kv[:idx]
				}
				t.Setenv(name, "")
				os.Unsetenv(name)
			}
		}
	}
}

func indexOf(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

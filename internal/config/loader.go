package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables, applying defaults for
// anything unset. Overload so .env values (if a file is present) take
// precedence over any same-named variable already in the process environment.
func Load() (Config, error) {
	_ = godotenv.Overload()

	cfg := Defaults()

	if v := envFloat("BM25_K1"); v != nil {
		cfg.BM25.K1 = *v
	}
	if v := envFloat("BM25_B"); v != nil {
		cfg.BM25.B = *v
	}
	if v := envInt("RRF_K"); v != nil {
		cfg.Fusion.RRFK = *v
	}
	if v := envInt("TOP_K_DEFAULT"); v != nil {
		cfg.Fusion.TopKDefault = *v
	}
	if v := envInt("K_FANOUT"); v != nil {
		cfg.Fusion.KFanout = *v
	}

	if v := strings.TrimSpace(os.Getenv("DENSE_MODEL_ID")); v != "" {
		cfg.Dense.ModelID = v
	}
	if v := strings.TrimSpace(os.Getenv("DENSE_DEVICE")); v != "" {
		cfg.Dense.Device = DenseDevice(v)
	}
	if v := envInt("DENSE_BATCH_SIZE"); v != nil {
		cfg.Dense.BatchSize = *v
	}
	if v := envInt("DENSE_DIMENSIONS"); v != nil {
		cfg.Dense.Dimensions = *v
	}
	if v := envBool("DENSE_LANGUAGE_FILTERED"); v != nil {
		cfg.Dense.LanguageFiltered = *v
	}
	if v := strings.TrimSpace(os.Getenv("DENSE_BACKEND")); v != "" {
		cfg.Dense.Backend = v
	}
	cfg.Dense.QdrantDSN = firstNonEmpty(os.Getenv("QDRANT_DSN"), cfg.Dense.QdrantDSN)
	if v := strings.TrimSpace(os.Getenv("QDRANT_COLLECTION")); v != "" {
		cfg.Dense.QdrantCollection = v
	}
	cfg.Dense.PostgresDSN = firstNonEmpty(os.Getenv("DENSE_POSTGRES_DSN"), os.Getenv("POSTGRES_DSN"), cfg.Dense.PostgresDSN)
	if v := strings.TrimSpace(os.Getenv("DENSE_DISTANCE_METRIC")); v != "" {
		cfg.Dense.DistanceMetric = v
	}

	if v := strings.TrimSpace(os.Getenv("GRAPH_BACKEND")); v != "" {
		cfg.Graph.Backend = v
	}
	cfg.Graph.PostgresDSN = firstNonEmpty(os.Getenv("GRAPH_POSTGRES_DSN"), os.Getenv("POSTGRES_DSN"), cfg.Graph.PostgresDSN)

	cfg.Embedding.BaseURL = strings.TrimSpace(os.Getenv("EMBEDDING_BASE_URL"))
	if v := strings.TrimSpace(os.Getenv("EMBEDDING_PATH")); v != "" {
		cfg.Embedding.Path = v
	} else if cfg.Embedding.Path == "" {
		cfg.Embedding.Path = "/v1/embeddings"
	}
	if v := strings.TrimSpace(os.Getenv("EMBEDDING_MODEL")); v != "" {
		cfg.Embedding.Model = v
	}
	cfg.Embedding.APIKey = strings.TrimSpace(os.Getenv("EMBEDDING_API_KEY"))
	if v := strings.TrimSpace(os.Getenv("EMBEDDING_API_HEADER")); v != "" {
		cfg.Embedding.APIHeader = v
	} else if cfg.Embedding.APIHeader == "" {
		cfg.Embedding.APIHeader = "Authorization"
	}
	if v := envInt("EMBEDDING_TIMEOUT_SECONDS"); v != nil {
		cfg.Embedding.Timeout = *v
	}

	if v := envInt("PER_RETRIEVER_TIMEOUT_MS"); v != nil {
		cfg.Ingest.PerRetrieverTimeoutMS = *v
	}
	if v := envBool("PERSIST_INGESTED_CONTENT"); v != nil {
		cfg.Ingest.PersistIngestedContent = *v
	}
	if v := strings.TrimSpace(os.Getenv("CHUNK_JOURNAL_PATH")); v != "" {
		cfg.Ingest.ChunkJournalPath = v
	}
	if v := strings.TrimSpace(os.Getenv("LANGUAGE_DEFAULT")); v != "" {
		cfg.Ingest.LanguageDefault = v
	}

	if v := envBool("CACHE_ENABLED"); v != nil {
		cfg.Cache.Enabled = *v
	}
	cfg.Cache.Addr = firstNonEmpty(os.Getenv("REDIS_ADDR"), cfg.Cache.Addr)
	cfg.Cache.Password = os.Getenv("REDIS_PASSWORD")
	if v := envInt("REDIS_DB"); v != nil {
		cfg.Cache.DB = *v
	}
	if v := envInt("CACHE_TTL_SECONDS"); v != nil {
		cfg.Cache.TTL = *v
	} else if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 300
	}

	if v := envBool("EVENTS_ENABLED"); v != nil {
		cfg.Events.Enabled = *v
	}
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		cfg.Events.Brokers = splitAndTrim(v)
	}
	if v := strings.TrimSpace(os.Getenv("KAFKA_TOPIC")); v != "" {
		cfg.Events.Topic = v
	} else if cfg.Events.Topic == "" {
		cfg.Events.Topic = "ingestion.progress"
	}

	if v := strings.TrimSpace(os.Getenv("SERVICE_NAME")); v != "" {
		cfg.Obs.ServiceName = v
	}
	if v := strings.TrimSpace(os.Getenv("ENVIRONMENT")); v != "" {
		cfg.Obs.Environment = v
	}
	cfg.Obs.OTLPEndpoint = strings.TrimSpace(os.Getenv("OTLP_ENDPOINT"))
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.Obs.LogLevel = v
	}
	cfg.Obs.LogPath = strings.TrimSpace(os.Getenv("LOG_PATH"))

	return cfg, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}

func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func envFloat(key string) *float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func envInt(key string) *int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func envBool(key string) *bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

// Package config loads the engine's runtime configuration from environment
// variables (optionally via a .env file) into a typed struct.
package config

import "time"

// DenseDevice selects where embedding inference runs.
type DenseDevice string

const (
	DeviceAuto DenseDevice = "auto"
	DeviceCPU  DenseDevice = "cpu"
	DeviceCUDA DenseDevice = "cuda"
	DeviceMPS  DenseDevice = "mps"
)

// BM25Config shapes Okapi BM25 scoring.
type BM25Config struct {
	K1 float64 `yaml:"k1"`
	B  float64 `yaml:"b"`
}

// FusionConfig shapes Reciprocal Rank Fusion.
type FusionConfig struct {
	RRFK        int `yaml:"rrf_k"`
	TopKDefault int `yaml:"top_k_default"`
	KFanout     int `yaml:"k_fanout"`
}

// DenseConfig configures the embedding encoder and vector store.
type DenseConfig struct {
	ModelID           string      `yaml:"model_id"`
	Device            DenseDevice `yaml:"device"`
	BatchSize         int         `yaml:"batch_size"`
	Dimensions        int         `yaml:"dimensions"`
	LanguageFiltered  bool        `yaml:"language_filtered"`
	Backend           string      `yaml:"backend"` // memory|qdrant|postgres
	QdrantDSN         string      `yaml:"qdrant_dsn"`
	QdrantCollection  string      `yaml:"qdrant_collection"`
	PostgresDSN       string      `yaml:"postgres_dsn"`
	DistanceMetric    string      `yaml:"distance_metric"` // cosine|l2|ip
}

// GraphConfig configures the graph store backend.
type GraphConfig struct {
	Backend     string `yaml:"backend"` // memory|postgres
	PostgresDSN string `yaml:"postgres_dsn"`
}

// EmbeddingConfig describes the HTTP embedding endpoint used by the dense
// encoder when it is not running a local/deterministic model.
type EmbeddingConfig struct {
	BaseURL   string `yaml:"base_url"`
	Path      string `yaml:"path"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	APIHeader string `yaml:"api_header"`
	Timeout   int    `yaml:"timeout_seconds"`
}

// IngestConfig configures the ingestion coordinator's ambient behavior.
type IngestConfig struct {
	PerRetrieverTimeoutMS  int    `yaml:"per_retriever_timeout_ms"`
	PersistIngestedContent bool   `yaml:"persist_ingested_content"`
	ChunkJournalPath       string `yaml:"chunk_journal_path"`
	LanguageDefault        string `yaml:"language_default"`
}

// CacheConfig configures the optional Redis query-embedding cache.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      int    `yaml:"ttl_seconds"`
}

// EventsConfig configures the optional Kafka ingestion progress publisher.
type EventsConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// ObsConfig configures OpenTelemetry tracing/metrics export.
type ObsConfig struct {
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	LogLevel    string `yaml:"log_level"`
	LogPath     string `yaml:"log_path"`
}

// Config is the engine's full runtime configuration.
type Config struct {
	BM25      BM25Config      `yaml:"bm25"`
	Fusion    FusionConfig    `yaml:"fusion"`
	Dense     DenseConfig     `yaml:"dense"`
	Graph     GraphConfig     `yaml:"graph"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Cache     CacheConfig     `yaml:"cache"`
	Events    EventsConfig    `yaml:"events"`
	Obs       ObsConfig       `yaml:"obs"`
}

// PerRetrieverTimeout returns the configured per-retriever deadline.
func (c Config) PerRetrieverTimeout() time.Duration {
	if c.Ingest.PerRetrieverTimeoutMS <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.Ingest.PerRetrieverTimeoutMS) * time.Millisecond
}

// Defaults returns a Config populated with the spec's documented defaults.
func Defaults() Config {
	return Config{
		BM25:   BM25Config{K1: 1.5, B: 0.75},
		Fusion: FusionConfig{RRFK: 60, TopKDefault: 10, KFanout: 50},
		Dense: DenseConfig{
			ModelID:          "deterministic-384",
			Device:           DeviceAuto,
			BatchSize:        32,
			Dimensions:       384,
			LanguageFiltered: true,
			Backend:          "memory",
			DistanceMetric:   "cosine",
			QdrantCollection: "chunks",
		},
		Graph: GraphConfig{Backend: "memory"},
		Ingest: IngestConfig{
			PerRetrieverTimeoutMS:  2000,
			PersistIngestedContent: true,
			ChunkJournalPath:       "data/chunk_journal.ndjson",
			LanguageDefault:        "en",
		},
		Obs: ObsConfig{
			ServiceName: "hybridrag",
			LogLevel:    "info",
		},
	}
}

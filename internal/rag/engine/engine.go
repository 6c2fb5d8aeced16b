// Package engine wires the Chunker, Entity Extractor, Graph Store, Sparse
// Index, Dense Index, Retrievers/Fusion, and Ingestion Coordinator into the
// single entry point the external interface (ingest/query/admin_reset/
// health) is built on.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"hybridrag/internal/config"
	"hybridrag/internal/rag/cache"
	"hybridrag/internal/rag/chunker"
	"hybridrag/internal/rag/dense"
	"hybridrag/internal/rag/extract"
	"hybridrag/internal/rag/ingest"
	"hybridrag/internal/rag/obs"
	"hybridrag/internal/rag/ragerr"
	"hybridrag/internal/rag/retrieve"
	"hybridrag/internal/rag/sparse"
	"hybridrag/internal/store"
)

// Metrics is the minimal counters/histograms surface the engine emits to.
type Metrics interface {
	IncCounter(name string, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
}

// Engine is the top-level RAG core: every external operation is a method on
// this type.
type Engine struct {
	cfg config.Config

	graph  store.GraphDB
	vector store.VectorStore
	sparse *sparse.Index
	embed  dense.Embedder
	extr   extract.Extractor
	chunks    *ingest.ChunkStore
	coord     *ingest.Coordinator
	cache     cache.EmbeddingCache
	eventSink ingest.Sink

	metrics Metrics
}

// New constructs an Engine from configuration, opening the configured graph
// and vector store backends and loading any persisted chunk journal for
// result hydration. The sparse index starts empty: it is not restored from a
// snapshot or rebuilt from the journal.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Engine, error) {
	graph, err := store.NewGraph(ctx, cfg.Graph)
	if err != nil {
		return nil, fmt.Errorf("open graph store: %w", err)
	}
	vector, err := store.NewVectorStore(ctx, cfg.Dense)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	sp := sparse.NewIndex(cfg.BM25.K1, cfg.BM25.B)

	chunks := ingest.NewChunkStore(cfg.Ingest.ChunkJournalPath, cfg.Ingest.PersistIngestedContent)
	if cfg.Ingest.PersistIngestedContent {
		if err := chunks.Load(); err != nil {
			log.Warn().Err(err).Msg("failed to load chunk journal, starting empty")
		}
	}

	e := &Engine{
		cfg:       cfg,
		graph:     graph,
		vector:    vector,
		sparse:    sp,
		embed:     defaultEmbedder(cfg),
		extr:      extract.RuleBasedExtractor{},
		chunks:    chunks,
		cache:     defaultCache(cfg),
		eventSink: defaultEventSink(cfg),
		metrics:   obs.NewOtelMetrics(),
	}
	for _, o := range opts {
		o(e)
	}

	e.coord = ingest.NewCoordinator(
		ingest.PlainTextParser{},
		chunker.ParagraphChunker{},
		e.extr,
		e.graph,
		e.sparse,
		e.vector,
		e.embed,
		e.chunks,
		e.eventSink,
		cfg.Dense.BatchSize,
	)
	return e, nil
}

func defaultEventSink(cfg config.Config) ingest.Sink {
	if !cfg.Events.Enabled {
		return ingest.NoopSink{}
	}
	return ingest.NewKafkaSink(cfg.Events)
}

func defaultEmbedder(cfg config.Config) dense.Embedder {
	if cfg.Embedding.BaseURL == "" {
		return dense.NewDeterministic(cfg.Dense.Dimensions, true, 0)
	}
	return dense.NewClient(cfg.Embedding, cfg.Dense.Dimensions, cfg.Dense.BatchSize)
}

func defaultCache(cfg config.Config) cache.EmbeddingCache {
	if !cfg.Cache.Enabled {
		return cache.NoopCache{}
	}
	ttl := time.Duration(cfg.Cache.TTL) * time.Second
	c, err := cache.NewRedisCache(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, ttl)
	if err != nil {
		log.Warn().Err(err).Msg("embedding cache disabled, redis unreachable")
		return cache.NoopCache{}
	}
	return c
}

// Option customizes Engine construction.
type Option func(*Engine)

// WithMetrics overrides the default OTel metrics sink (e.g. with obs.MockMetrics
// in tests).
func WithMetrics(m Metrics) Option { return func(e *Engine) { e.metrics = m } }

// WithEmbedder overrides the embedding backend.
func WithEmbedder(emb dense.Embedder) Option { return func(e *Engine) { e.embed = emb } }

// WithExtractor overrides the entity extractor.
func WithExtractor(ex extract.Extractor) Option { return func(e *Engine) { e.extr = ex } }

// WithCache overrides the query-embedding cache (e.g. with cache.NoopCache
// in tests, or a RedisCache pointed at a different address).
func WithCache(c cache.EmbeddingCache) Option { return func(e *Engine) { e.cache = c } }

// WithEventSink routes ingestion progress events to sink instead of
// discarding them.
func WithEventSink(sink ingest.Sink) Option {
	return func(e *Engine) { e.eventSink = sink }
}

// Ingest runs content through the ingestion coordinator and returns the
// resulting document id.
func (e *Engine) Ingest(ctx context.Context, content []byte, language string) (string, error) {
	if language == "" {
		language = e.cfg.Ingest.LanguageDefault
	}
	start := time.Now()
	docID, err := e.coord.Ingest(ctx, content, language)
	e.recordIngest(err, time.Since(start))
	return docID, err
}

func (e *Engine) recordIngest(err error, dur time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
		if kind, ok := ragerr.KindOf(err); ok {
			status = string(kind)
		}
	}
	e.metrics.IncCounter("ingest_total", map[string]string{"status": status})
	e.metrics.ObserveHistogram("ingest_duration_ms", float64(dur.Milliseconds()), nil)
}

// AdminReset clears all three stores and the chunk journal, in the fixed
// order sparse -> dense -> graph -> journal. It does not block ingest or
// query calls that run at the same time.
func (e *Engine) AdminReset(ctx context.Context) error {
	err := e.coord.Reset(ctx)
	status := "ok"
	if err != nil {
		status = "error"
	}
	e.metrics.IncCounter("admin_reset_total", map[string]string{"status": status})
	return err
}

// ChunkLookup exposes the chunk store for the retrieve package's hydration
// step.
func (e *Engine) ChunkLookup() retrieve.ChunkLookup { return e.chunks }

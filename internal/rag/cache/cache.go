// Package cache implements the optional Redis-backed query-embedding cache:
// a way to skip re-encoding a repeated query string on the dense retrieval
// path. It is entirely optional; the engine runs correctly with a NoopCache.
package cache

import "context"

// EmbeddingCache stores a query string's embedding vector keyed by the
// query text itself (scoped by model name, since a cached vector from one
// embedding model is meaningless under another).
type EmbeddingCache interface {
	Get(ctx context.Context, model, query string) ([]float32, bool, error)
	Set(ctx context.Context, model, query string, vector []float32) error
}

// NoopCache never hits and never stores; it is the default when caching is
// disabled in configuration.
type NoopCache struct{}

func (NoopCache) Get(_ context.Context, _, _ string) ([]float32, bool, error) { return nil, false, nil }
func (NoopCache) Set(_ context.Context, _, _ string, _ []float32) error       { return nil }

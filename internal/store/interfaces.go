// Package store holds the adapter contracts and backend implementations for
// the two external stores the engine depends on: the graph store and the
// dense vector store. The sparse (BM25) index lives entirely in-process and
// has no adapter here.
package store

import "context"

// Edge is a directed, typed graph edge carrying arbitrary properties
// (confidence for MENTIONS, weight for RELATES_TO).
type Edge struct {
	Source string
	Rel    string
	Target string
	Props  map[string]any
}

// GraphStats reports node/edge counts for stats().
type GraphStats struct {
	Documents     int
	Chunks        int
	Entities      int
	Relationships int
}

// ChunkWeight is one row of a find_chunks_by_entities traversal result.
type ChunkWeight struct {
	ChunkID string
	Weight  float64
}

// GraphDB is the adapter contract consumed by the Graph Store component.
// Every operation is idempotent by id except find_chunks_by_entities and
// reset_all/stats, which are read-only/exclusive operations respectively.
type GraphDB interface {
	UpsertDocument(ctx context.Context, id string, props map[string]any) error
	UpsertChunk(ctx context.Context, id, docID string, ordinal int, props map[string]any) error
	UpsertEntity(ctx context.Context, id string, confidence float64, props map[string]any) error
	LinkMention(ctx context.Context, chunkID, entityID string, confidence float64) error
	LinkRelation(ctx context.Context, sourceEntityID, targetEntityID string, weight float64) error
	FindChunksByEntities(ctx context.Context, entityIDs []string, hops int, limit int) ([]ChunkWeight, error)
	FindEntitiesByName(ctx context.Context, canonicalName, language string) ([]string, error)
	HasChunk(ctx context.Context, chunkID string) (bool, error)
	ResetAll(ctx context.Context) error
	Stats(ctx context.Context) (GraphStats, error)
	Ping(ctx context.Context) error
}

// VectorPoint is one row returned by a vector similarity search.
type VectorPoint struct {
	ChunkID    string
	Similarity float64
	Payload    map[string]any
}

// VectorStore is the adapter contract consumed by the Dense Index component.
// The point id used internally may be a deterministic hash of chunk_id;
// callers only ever observe chunk_id.
type VectorStore interface {
	Upsert(ctx context.Context, chunkID string, vector []float32, payload map[string]any) error
	Search(ctx context.Context, queryVector []float32, languageFilter string, topK int) ([]VectorPoint, error)
	DeleteByDocID(ctx context.Context, docID string) error
	ClearCollection(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Dimension() int
	Ping(ctx context.Context) error
}

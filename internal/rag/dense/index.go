package dense

import (
	"context"

	"golang.org/x/sync/errgroup"

	"hybridrag/internal/store"
)

// upsertConcurrency bounds how many Upsert calls run in flight at once once
// the batch has been embedded; the embed call itself stays a single batched
// request.
const upsertConcurrency = 8

// ChunkInput is one chunk to encode and upsert into the vector store.
type ChunkInput struct {
	ChunkID  string
	DocID    string
	Text     string
	Language string
}

// UpsertChunks encodes chunks in batches via emb and upserts every resulting
// vector into vs, keyed by chunk id. Batching is mandatory: the caller
// collects all chunks for a document and this function submits them through
// Embedder.EmbedBatch rather than one call per chunk.
func UpsertChunks(ctx context.Context, vs store.VectorStore, emb Embedder, chunks []ChunkInput) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := emb.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(chunks) {
		return 0, ErrEncodeCountMismatch
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(upsertConcurrency)
	for i, c := range chunks {
		i, c := i, c
		g.Go(func() error {
			payload := map[string]any{
				"doc_id":   c.DocID,
				"language": c.Language,
				"text":     c.Text,
			}
			return vs.Upsert(gctx, c.ChunkID, vectors[i], payload)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

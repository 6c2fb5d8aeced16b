// Package ingest implements the Ingestion Coordinator (spec component C7):
// an ordered, per-document-serialized pipeline from raw bytes through the
// graph, sparse, and dense stores, emitting progress events at each stage
// boundary.
package ingest

import (
	"context"
	"fmt"

	"hybridrag/internal/observability"
	"hybridrag/internal/rag/chunker"
	"hybridrag/internal/rag/dense"
	"hybridrag/internal/rag/extract"
	"hybridrag/internal/rag/ids"
	"hybridrag/internal/rag/ragerr"
	"hybridrag/internal/rag/sparse"
	"hybridrag/internal/store"
)

// Coordinator owns the full ingestion pipeline and admin_reset across all
// three stores.
type Coordinator struct {
	Parser    Parser
	Chunker   chunker.Chunker
	Extractor extract.Extractor
	Graph     store.GraphDB
	Sparse    *sparse.Index
	Vector    store.VectorStore
	Embedder  dense.Embedder
	Chunks    *ChunkStore
	Sink      Sink

	DenseBatchSize int

	locks *docLocks
}

// NewCoordinator constructs a Coordinator. Sink may be nil, in which case
// events are discarded.
func NewCoordinator(parser Parser, ch chunker.Chunker, ex extract.Extractor, graph store.GraphDB, sp *sparse.Index, vec store.VectorStore, emb dense.Embedder, chunks *ChunkStore, sink Sink, denseBatchSize int) *Coordinator {
	if sink == nil {
		sink = NoopSink{}
	}
	return &Coordinator{
		Parser: parser, Chunker: ch, Extractor: ex,
		Graph: graph, Sparse: sp, Vector: vec, Embedder: emb,
		Chunks: chunks, Sink: sink, DenseBatchSize: denseBatchSize,
		locks: newDocLocks(),
	}
}

// Ingest runs content through the full pipeline and returns the resulting
// document id. Re-ingesting byte-identical content is idempotent: the
// document id is a content hash, so every store's upserts simply overwrite
// the prior state with identical values.
func (c *Coordinator) Ingest(ctx context.Context, content []byte, language string) (string, error) {
	docID := ids.DocumentID(content)
	unlock := c.locks.Lock(docID)
	defer unlock()

	c.emit(docID, StageParse, nil)
	text, err := c.Parser.Parse(content)
	if err != nil {
		return docID, ragerr.New(ragerr.InvalidRequest, err)
	}
	if len(text) == 0 {
		return docID, ragerr.New(ragerr.EmptyDocument, nil)
	}

	c.emit(docID, StageChunk, nil)
	chunks := c.Chunker.Chunk(docID, text, language)
	if len(chunks) == 0 {
		return docID, ragerr.New(ragerr.EmptyDocument, nil)
	}

	// Graph writes are the linearization point: a document is only
	// considered ingested once its document/chunk nodes exist in the
	// graph. Failure here aborts before any sparse/dense write happens.
	logger := observability.LoggerWithTrace(ctx)

	c.emit(docID, StageGraph, nil)
	if err := c.writeGraph(ctx, docID, language, chunks); err != nil {
		werr := ragerr.New(ragerr.GraphUnavailable, err)
		c.emit(docID, StageGraph, werr)
		logger.Error().Err(werr).Str("doc_id", docID).Msg("ingest_graph_write_failed")
		return docID, werr
	}

	// Entity extraction and linking is best-effort: a failure here never
	// aborts ingestion, it only prevents the graph retriever from finding
	// these chunks via entity traversal.
	c.linkEntities(ctx, chunks)

	c.emit(docID, StageSparse, nil)
	if err := c.writeSparse(chunks); err != nil {
		werr := ragerr.WithMethod(ragerr.IndexWriteFailed, "sparse", err)
		c.emit(docID, StageSparse, werr)
		logger.Warn().Err(werr).Str("doc_id", docID).Msg("ingest_sparse_write_failed")
		return docID, werr
	}

	c.emit(docID, StageDense, nil)
	if err := c.writeDense(ctx, chunks); err != nil {
		kind := ragerr.EncoderError
		werr := ragerr.WithMethod(kind, "dense", err)
		c.emit(docID, StageDense, werr)
		// Sparse and graph are already committed; dense failure is an
		// accepted eventual-inconsistency window rather than a full abort.
		logger.Warn().Err(werr).Str("doc_id", docID).Msg("ingest_dense_write_failed")
		return docID, werr
	}

	for _, ch := range chunks {
		_ = c.Chunks.Append(ch.ID, ch.DocID, ch.Text, ch.Language)
	}

	c.emit(docID, StageDone, nil)
	return docID, nil
}

func (c *Coordinator) writeGraph(ctx context.Context, docID, language string, chunks []chunker.Chunk) error {
	if err := c.Graph.UpsertDocument(ctx, docID, map[string]any{"language": language}); err != nil {
		return err
	}
	for _, ch := range chunks {
		if err := c.Graph.UpsertChunk(ctx, ch.ID, docID, ch.Ordinal, map[string]any{"language": ch.Language}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) linkEntities(ctx context.Context, chunks []chunker.Chunk) {
	if c.Extractor == nil {
		return
	}
	for _, ch := range chunks {
		mentions, err := c.Extractor.Extract(ch.Text, ch.Language)
		if err != nil {
			observability.LoggerWithTrace(ctx).Warn().Err(err).Str("chunk_id", ch.ID).Msg("ingest_entity_extraction_failed")
			continue // non-fatal: extraction warning only
		}
		entityIDs := make([]string, 0, len(mentions))
		for _, m := range mentions {
			eid := ids.EntityID(m.CanonicalName, string(m.Type))
			if err := c.Graph.UpsertEntity(ctx, eid, m.Confidence, map[string]any{
				"canonical_name": m.CanonicalName,
				"type":           string(m.Type),
			}); err != nil {
				continue
			}
			if err := c.Graph.LinkMention(ctx, ch.ID, eid, m.Confidence); err != nil {
				continue
			}
			entityIDs = append(entityIDs, eid)
		}
		// Spec leaves RELATES_TO edge creation to future enrichment; this
		// coordinator only establishes MENTIONS edges today.
		_ = entityIDs
	}
}

func (c *Coordinator) writeSparse(chunks []chunker.Chunk) error {
	inputs := make([]sparse.ChunkInput, len(chunks))
	for i, ch := range chunks {
		inputs[i] = sparse.ChunkInput{ChunkID: ch.ID, DocID: ch.DocID, Text: ch.Text, Language: ch.Language}
	}
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = addSparse(c.Sparse, inputs)
		if err == nil {
			return nil
		}
	}
	return err
}

// addSparse wraps Index.Add, which never itself returns an error, in a
// function signature that can surface one. A real backend swap for the
// sparse store (e.g. external service) would return errors from here; kept
// as a seam so writeSparse's retry-once policy already has a place to bind.
func addSparse(idx *sparse.Index, inputs []sparse.ChunkInput) error {
	idx.Add(inputs)
	return nil
}

func (c *Coordinator) writeDense(ctx context.Context, chunks []chunker.Chunk) error {
	inputs := make([]dense.ChunkInput, len(chunks))
	for i, ch := range chunks {
		inputs[i] = dense.ChunkInput{ChunkID: ch.ID, DocID: ch.DocID, Text: ch.Text, Language: ch.Language}
	}
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		_, err = dense.UpsertChunks(ctx, c.Vector, c.Embedder, inputs)
		if err == nil {
			return nil
		}
	}
	return err
}

func (c *Coordinator) emit(docID string, stage Stage, err error) {
	c.Sink.Emit(Event{DocID: docID, Stage: stage, Err: err})
}

// Reset performs admin_reset: it clears the three stores one after another
// in a fixed order (sparse, then dense, then graph), each under that store's
// own locking, then truncates the chunk journal. It does not block ingest or
// query calls that run at the same time.
func (c *Coordinator) Reset(ctx context.Context) error {
	c.Sparse.Clear()
	if err := c.Vector.ClearCollection(ctx); err != nil {
		return fmt.Errorf("dense reset: %w", err)
	}
	if err := c.Graph.ResetAll(ctx); err != nil {
		return fmt.Errorf("graph reset: %w", err)
	}
	return c.Chunks.Reset()
}

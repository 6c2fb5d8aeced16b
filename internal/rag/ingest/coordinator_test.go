package ingest

import (
	"context"
	"testing"

	"hybridrag/internal/rag/chunker"
	"hybridrag/internal/rag/dense"
	"hybridrag/internal/rag/extract"
	"hybridrag/internal/rag/ragerr"
	"hybridrag/internal/rag/sparse"
	"hybridrag/internal/store"
)

func newTestCoordinator(t *testing.T) (*Coordinator, *ChannelSink) {
	t.Helper()
	sink := NewChannelSink(64)
	c := NewCoordinator(
		PlainTextParser{},
		chunker.ParagraphChunker{},
		extract.RuleBasedExtractor{},
		store.NewMemoryGraph(),
		sparse.NewIndex(1.5, 0.75),
		store.NewMemoryVector(64),
		dense.NewDeterministic(64, true, 0),
		NewChunkStore("", false),
		sink,
		32,
	)
	return c, sink
}

func TestIngest_EmptyDocumentRejected(t *testing.T) {
	c, _ := newTestCoordinator(t)
	_, err := c.Ingest(context.Background(), []byte("   \n\n  "), "en")
	if !ragerr.Is(err, ragerr.EmptyDocument) {
		t.Fatalf("expected EmptyDocument, got %v", err)
	}
}

func TestIngest_HappyPathWritesAllThreeStores(t *testing.T) {
	c, sink := newTestCoordinator(t)
	content := []byte("Acme Corporation was founded in New York City.\n\nIt builds software.")
	docID, err := c.Ingest(context.Background(), content, "en")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if c.Chunks.Count() == 0 {
		t.Fatalf("expected chunk store to hold ingested chunks")
	}
	stats, err := c.Graph.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Documents != 1 || stats.Chunks == 0 {
		t.Fatalf("expected graph to record the document and its chunks: %+v", stats)
	}
	if c.Sparse.Count() == 0 {
		t.Fatalf("expected sparse index to hold ingested chunks")
	}
	n, err := c.Vector.Count(context.Background())
	if err != nil || n == 0 {
		t.Fatalf("expected vector store to hold ingested chunks: n=%d err=%v", n, err)
	}

	var stages []Stage
	draining := true
	for draining {
		select {
		case e := <-sink.C:
			stages = append(stages, e.Stage)
		default:
			draining = false
		}
	}
	if len(stages) == 0 || stages[len(stages)-1] != StageDone {
		t.Fatalf("expected pipeline to emit a terminal done event, got %v", stages)
	}
	_ = docID
}

func TestIngest_IsIdempotentForIdenticalContent(t *testing.T) {
	c, _ := newTestCoordinator(t)
	content := []byte("Paragraph one.\n\nParagraph two.")
	id1, err := c.Ingest(context.Background(), content, "en")
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	id2, err := c.Ingest(context.Background(), content, "en")
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected identical content to yield the same doc id, got %q and %q", id1, id2)
	}
	if c.Sparse.Count() != 2 {
		t.Fatalf("expected re-ingestion to overwrite, not duplicate, chunks: count=%d", c.Sparse.Count())
	}
}

func TestReset_ClearsAllStoresAndJournal(t *testing.T) {
	c, _ := newTestCoordinator(t)
	_, err := c.Ingest(context.Background(), []byte("Some content here.\n\nMore content."), "en")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if err := c.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if c.Sparse.Count() != 0 {
		t.Fatalf("expected sparse index cleared")
	}
	n, _ := c.Vector.Count(context.Background())
	if n != 0 {
		t.Fatalf("expected vector store cleared")
	}
	stats, _ := c.Graph.Stats(context.Background())
	if stats.Documents != 0 {
		t.Fatalf("expected graph cleared")
	}
	if c.Chunks.Count() != 0 {
		t.Fatalf("expected chunk store cleared")
	}
}

package engine

import (
	"context"
	"testing"

	"hybridrag/internal/config"
	"hybridrag/internal/rag/ragerr"
	"hybridrag/internal/rag/retrieve"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.Defaults()
	cfg.Dense.Dimensions = 64
	cfg.Ingest.PersistIngestedContent = false
	e, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestEngine_IngestThenQueryFindsChunk(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	_, err := e.Ingest(ctx, []byte("Quantum computers use qubits.\n\nQubits exploit superposition."), "en")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	results, err := e.Query(ctx, retrieve.Request{Query: "qubits superposition"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected at least one result")
	}
	if results[0].Rank != 1 {
		t.Fatalf("expected top result to have rank 1, got %d", results[0].Rank)
	}
}

func TestEngine_QueryRejectsUnknownMethodAlias(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Query(context.Background(), retrieve.Request{Query: "anything", Methods: []string{"colbert"}})
	if !ragerr.Is(err, ragerr.InvalidRequest) {
		t.Fatalf("expected InvalidRequest for an unsupported method alias, got %v", err)
	}
}

func TestEngine_QueryRejectsEmptyQuery(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Query(context.Background(), retrieve.Request{Query: ""})
	if !ragerr.Is(err, ragerr.InvalidRequest) {
		t.Fatalf("expected InvalidRequest for an empty query, got %v", err)
	}
}

func TestEngine_QueryRejectsNegativeTopK(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Query(context.Background(), retrieve.Request{Query: "anything", TopK: -1})
	if !ragerr.Is(err, ragerr.InvalidRequest) {
		t.Fatalf("expected InvalidRequest for a negative top_k, got %v", err)
	}
}

func TestEngine_QueryZeroTopKUsesConfiguredDefault(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	if _, err := e.Ingest(ctx, []byte("Quantum computers use qubits.\n\nQubits exploit superposition."), "en"); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := e.Query(ctx, retrieve.Request{Query: "qubits superposition", TopK: 0}); err != nil {
		t.Fatalf("expected zero top_k to fall back to the configured default, got %v", err)
	}
}

func TestEngine_QueryRejectsMalformedLanguageTag(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Query(context.Background(), retrieve.Request{Query: "anything", Language: "english!"})
	if !ragerr.Is(err, ragerr.InvalidRequest) {
		t.Fatalf("expected InvalidRequest for a malformed language tag, got %v", err)
	}
}

func TestEngine_QueryAcceptsEmptyOrWellFormedLanguageTag(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	if _, err := e.Ingest(ctx, []byte("Quantum computers use qubits.\n\nQubits exploit superposition."), "en"); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	for _, lang := range []string{"", "en", "en-US"} {
		if _, err := e.Query(ctx, retrieve.Request{Query: "qubits superposition", Language: lang}); err != nil {
			t.Fatalf("language tag %q should be accepted, got %v", lang, err)
		}
	}
}

func TestEngine_AdminResetClearsIndexedContent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	if _, err := e.Ingest(ctx, []byte("Some ingested content.\n\nAnother paragraph."), "en"); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if err := e.AdminReset(ctx); err != nil {
		t.Fatalf("admin reset: %v", err)
	}
	_, err := e.Query(ctx, retrieve.Request{Query: "ingested content"})
	if !ragerr.Is(err, ragerr.AllRetrieversEmpty) {
		t.Fatalf("expected AllRetrieversEmpty after reset, got %v", err)
	}
}

func TestEngine_HealthReportsAllComponentsUp(t *testing.T) {
	e := newTestEngine(t)
	h := e.Health(context.Background())
	if !h.Healthy() {
		t.Fatalf("expected all components healthy with in-memory backends: %+v", h)
	}
}

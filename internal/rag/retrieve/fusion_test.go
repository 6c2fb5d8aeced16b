package retrieve

import (
	"context"
	"testing"
	"time"
)

type stubLookup map[string][3]string // chunkID -> [text, language, docID]

func (s stubLookup) ChunkText(_ context.Context, chunkID string) (string, string, string, bool) {
	v, ok := s[chunkID]
	if !ok {
		return "", "", "", false
	}
	return v[0], v[1], v[2], true
}

func TestFuse_CombinesRanksAcrossMethods(t *testing.T) {
	byMethod := map[string][]Candidate{
		MethodSparse: {{ChunkID: "a", Rank: 1}, {ChunkID: "b", Rank: 2}},
		MethodDense:  {{ChunkID: "b", Rank: 1}, {ChunkID: "a", Rank: 2}},
	}
	fused := Fuse(byMethod, 60)
	if len(fused) != 2 {
		t.Fatalf("expected 2 fused entries, got %d", len(fused))
	}
	// a: 1/61 + 1/62; b: 1/62 + 1/61 -- identical scores, tie-break by
	// method count (equal) then chunk id ascending.
	if fused[0].chunkID != "a" || fused[1].chunkID != "b" {
		t.Fatalf("expected tie-break to order a before b, got %v", fused)
	}
	want := 1.0/61 + 1.0/62
	if diff := fused[0].score - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("unexpected fused score: got %v want %v", fused[0].score, want)
	}
}

func TestFuse_MoreMethodsBreaksTies(t *testing.T) {
	byMethod := map[string][]Candidate{
		MethodSparse: {{ChunkID: "x", Rank: 1}},
		MethodDense:  {{ChunkID: "y", Rank: 1}},
		MethodGraph:  {{ChunkID: "y", Rank: 1}},
	}
	fused := Fuse(byMethod, 60)
	// x has score 1/61 from one method; y has 1/61 from two methods, so y
	// scores strictly higher (and would still win the tie-break even if
	// scores were equal, since y appears in more lists).
	if fused[0].chunkID != "y" {
		t.Fatalf("expected y to rank first, got %v", fused)
	}
}

func TestBuildResults_SkipsUnresolvableChunksAndAssignsDenseRanks(t *testing.T) {
	byMethod := map[string][]Candidate{
		MethodSparse: {{ChunkID: "known", Rank: 1}, {ChunkID: "missing", Rank: 2}},
	}
	lookup := stubLookup{"known": {"hello world", "en", "doc1"}}
	results := BuildResults(context.Background(), byMethod, 60, 10, lookup)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Rank != 1 {
		t.Fatalf("expected dense rank 1 for the sole surviving result, got %d", results[0].Rank)
	}
	if results[0].DocID != "doc1" || results[0].Text != "hello world" {
		t.Fatalf("unexpected hydrated result: %+v", results[0])
	}
}

func TestFanout_AllUnconfiguredRetrieversYieldAllRetrieversEmpty(t *testing.T) {
	sparse := SparseRetriever{} // nil index -> empty, no error
	dense := DenseRetriever{}   // nil store -> empty, no error
	graph := GraphRetriever{}   // nil graph -> empty, no error

	_, errs, err := Fanout(context.Background(), sparse, dense, graph, Request{Query: "x", KFanout: 10}, 10*time.Millisecond)
	if err == nil {
		t.Fatalf("expected AllRetrieversEmpty since every retriever is unconfigured")
	}
	_ = errs
}

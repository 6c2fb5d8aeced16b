package dense

import (
	"context"
	"math"
	"testing"
)

func TestDeterministicEmbedder_IdenticalInputYieldsIdenticalVector(t *testing.T) {
	emb := NewDeterministic(384, true, 0)
	a, err := emb.EmbedBatch(context.Background(), []string{"machine learning transforms data"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	b, err := emb.EmbedBatch(context.Background(), []string{"machine learning transforms data"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(a[0]) != 384 {
		t.Fatalf("expected dimension 384, got %d", len(a[0]))
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("vectors differ at index %d: %v vs %v", i, a[0][i], b[0][i])
		}
	}
}

func TestDeterministicEmbedder_NormalizedIsUnitNorm(t *testing.T) {
	emb := NewDeterministic(64, true, 0)
	vecs, err := emb.EmbedBatch(context.Background(), []string{"some text to embed"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	var sum float64
	for _, x := range vecs[0] {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if math.Abs(norm-1.0) > 1e-6 {
		t.Fatalf("expected unit norm, got %v", norm)
	}
}

func TestDeterministicEmbedder_DifferentTextsDiffer(t *testing.T) {
	emb := NewDeterministic(64, true, 0)
	vecs, err := emb.EmbedBatch(context.Background(), []string{"alpha beta gamma", "completely unrelated text"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	identical := true
	for i := range vecs[0] {
		if vecs[0][i] != vecs[1][i] {
			identical = false
			break
		}
	}
	if identical {
		t.Fatalf("expected different texts to produce different vectors")
	}
}

package sparse

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestIndex_EmptyCorpusYieldsEmptyResult(t *testing.T) {
	idx := NewIndex(1.5, 0.75)
	if hits := idx.Search("machine learning", "", 10); hits != nil {
		t.Fatalf("expected nil hits on empty corpus, got %v", hits)
	}
}

func TestIndex_StopwordOnlyQueryYieldsEmptyResult(t *testing.T) {
	idx := NewIndex(1.5, 0.75)
	idx.Add([]ChunkInput{{ChunkID: "c1", DocID: "d1", Text: "machine learning transforms data", Language: "en"}})
	if hits := idx.Search("the and of", "en", 10); hits != nil {
		t.Fatalf("expected nil hits for stopword-only query, got %v", hits)
	}
}

func TestIndex_SingleTermMatch(t *testing.T) {
	idx := NewIndex(1.5, 0.75)
	idx.Add([]ChunkInput{
		{ChunkID: "d1_chunk_0", DocID: "d1", Text: "Machine learning transforms data into predictions.", Language: "en"},
	})
	hits := idx.Search("machine learning", "en", 5)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].ChunkID != "d1_chunk_0" {
		t.Fatalf("unexpected chunk id: %s", hits[0].ChunkID)
	}
	if hits[0].Score <= 0 {
		t.Fatalf("expected positive score, got %v", hits[0].Score)
	}
}

func TestIndex_Monotonicity(t *testing.T) {
	idx := NewIndex(1.5, 0.75)
	idx.Add([]ChunkInput{
		{ChunkID: "a", DocID: "da", Text: "cats cats cats dogs", Language: "en"},
		{ChunkID: "b", DocID: "db", Text: "cats dogs birds fish turtles snakes", Language: "en"},
	})
	hits := idx.Search("cats", "en", 10)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ChunkID != "a" {
		t.Fatalf("expected chunk 'a' (higher f(t)/|d|) to rank first, got %s", hits[0].ChunkID)
	}
}

func TestIndex_TieBreakByChunkIDAscending(t *testing.T) {
	idx := NewIndex(1.5, 0.75)
	idx.Add([]ChunkInput{
		{ChunkID: "z_chunk_0", DocID: "dz", Text: "apple banana", Language: "en"},
		{ChunkID: "a_chunk_0", DocID: "da", Text: "apple banana", Language: "en"},
	})
	hits := idx.Search("apple banana", "en", 10)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ChunkID != "a_chunk_0" {
		t.Fatalf("expected tie broken by ascending chunk id, got order %v", hits)
	}
}

func TestIndex_PersistThenLoadRoundTrips(t *testing.T) {
	idx := NewIndex(1.5, 0.75)
	idx.Add([]ChunkInput{
		{ChunkID: "c1", DocID: "d1", Text: "machine learning transforms data", Language: "en"},
		{ChunkID: "c2", DocID: "d1", Text: "deep learning models require data", Language: "en"},
	})
	before := idx.Search("learning data", "en", 10)

	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := idx.Persist(path); err != nil {
		t.Fatalf("persist: %v", err)
	}

	loaded := NewIndex(1.5, 0.75)
	if err := loaded.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	after := loaded.Search("learning data", "en", 10)

	if len(before) != len(after) {
		t.Fatalf("hit count changed across persist/load: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("hit %d changed across persist/load: %+v vs %+v", i, before[i], after[i])
		}
	}
	_ = os.Remove(path)
}

func TestIndex_BM25ScoreMatchesFormula(t *testing.T) {
	idx := NewIndex(1.5, 0.75)
	idx.Add([]ChunkInput{{ChunkID: "c1", DocID: "d1", Text: "cats cats cats dogs", Language: "en"}})

	hits := idx.Search("cats", "en", 10)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}

	const (
		n      = 1.0
		df     = 1.0
		f      = 3.0
		length = 4.0
		avgdl  = 4.0
		k1     = 1.5
		b      = 0.75
	)
	idf := math.Log(1 + (n-df+0.5)/(df+0.5))
	want := idf * f * (k1 + 1) / (f + k1*(1-b+b*length/avgdl))

	if diff := hits[0].Score - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("score %v does not match Okapi BM25 formula (IDF = log(1+x)), want %v", hits[0].Score, want)
	}
}

func TestIndex_Clear(t *testing.T) {
	idx := NewIndex(1.5, 0.75)
	idx.Add([]ChunkInput{{ChunkID: "c1", DocID: "d1", Text: "hello world", Language: "en"}})
	idx.Clear()
	if idx.Count() != 0 {
		t.Fatalf("expected empty index after Clear, got count %d", idx.Count())
	}
	if hits := idx.Search("hello", "en", 10); hits != nil {
		t.Fatalf("expected nil hits after Clear, got %v", hits)
	}
}

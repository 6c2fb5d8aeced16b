// Package sparse implements the Sparse Index (spec component C4): a
// language-aware tokenizer plus an in-process Okapi BM25 index with optional
// local-file persistence.
package sparse

import (
	"encoding/json"
	"math"
	"os"
	"sort"
	"sync"
)

// Hit is one scored result from Search.
type Hit struct {
	ChunkID string
	Score   float64
}

// chunkRecord is the indexed state for one chunk.
type chunkRecord struct {
	DocID    string         `json:"doc_id"`
	Language string         `json:"language"`
	Tokens   []string       `json:"tokens"`
	TermFreq map[string]int `json:"term_freq"`
	Length   int            `json:"length"`
}

// snapshot is the on-disk persistence format.
type snapshot struct {
	K1      float64                 `json:"k1"`
	B       float64                 `json:"b"`
	Chunks  map[string]chunkRecord  `json:"chunks"`
}

// Index is the Okapi BM25 sparse index. All mutating operations (Add, Clear,
// Load) hold the writer side of the lock; Search holds the reader side, so
// reads never observe a torn df/avgdl update.
type Index struct {
	mu sync.RWMutex

	k1 float64
	b  float64

	chunks  map[string]chunkRecord // chunk_id -> record
	df      map[string]int         // token -> document frequency
	totalLen int
}

// NewIndex constructs an empty BM25 index with the given k1/b shape
// parameters (spec defaults: k1=1.5, b=0.75).
func NewIndex(k1, b float64) *Index {
	if k1 <= 0 {
		k1 = 1.5
	}
	if b < 0 {
		b = 0.75
	}
	return &Index{
		k1:     k1,
		b:      b,
		chunks: make(map[string]chunkRecord),
		df:     make(map[string]int),
	}
}

// ChunkInput is one chunk to add to the index.
type ChunkInput struct {
	ChunkID  string
	DocID    string
	Text     string
	Language string
}

// Add incrementally indexes chunks, atomically updating df and avgdl. It
// holds the writer lock, so it is safe to call concurrently with Search and
// with other Add/Clear/Load calls, which it serializes against.
func (idx *Index) Add(chunks []ChunkInput) {
	if len(chunks) == 0 {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, c := range chunks {
		tokens := Tokenize(c.Text, c.Language)
		if old, existed := idx.chunks[c.ChunkID]; existed {
			idx.removeLocked(c.ChunkID, old)
		}
		tf := make(map[string]int, len(tokens))
		for _, t := range tokens {
			tf[t]++
		}
		for t := range tf {
			idx.df[t]++
		}
		idx.chunks[c.ChunkID] = chunkRecord{
			DocID:    c.DocID,
			Language: c.Language,
			Tokens:   tokens,
			TermFreq: tf,
			Length:   len(tokens),
		}
		idx.totalLen += len(tokens)
	}
}

// removeLocked removes an existing chunk's contribution to df/totalLen.
// Caller must hold the write lock.
func (idx *Index) removeLocked(chunkID string, rec chunkRecord) {
	for t := range rec.TermFreq {
		idx.df[t]--
		if idx.df[t] <= 0 {
			delete(idx.df, t)
		}
	}
	idx.totalLen -= rec.Length
	delete(idx.chunks, chunkID)
}

// Remove deletes a chunk from the index (used when a document is replaced).
func (idx *Index) Remove(chunkID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if rec, ok := idx.chunks[chunkID]; ok {
		idx.removeLocked(chunkID, rec)
	}
}

// RemoveByDocID deletes every chunk belonging to docID.
func (idx *Index) RemoveByDocID(docID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for chunkID, rec := range idx.chunks {
		if rec.DocID == docID {
			idx.removeLocked(chunkID, rec)
		}
	}
}

// Search scores query against every indexed chunk matching languageFilter
// (empty means all languages) and returns the topK highest-scoring chunks,
// sorted by score descending, ties broken by chunk_id ascending. An empty
// corpus, or a query containing only stopwords/dropped tokens, yields an
// empty result.
func (idx *Index) Search(query, languageFilter string, topK int) []Hit {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := len(idx.chunks)
	if n == 0 {
		return nil
	}
	terms := Tokenize(query, languageFilter)
	if len(terms) == 0 {
		return nil
	}
	avgdl := float64(idx.totalLen) / float64(n)
	if avgdl == 0 {
		avgdl = 1
	}

	idf := make(map[string]float64, len(terms))
	for _, t := range terms {
		df := idx.df[t]
		idf[t] = math.Log(1 + (float64(n)-float64(df)+0.5)/(float64(df)+0.5))
	}

	hits := make([]Hit, 0, 64)
	for chunkID, rec := range idx.chunks {
		if languageFilter != "" && rec.Language != "" && rec.Language != languageFilter {
			continue
		}
		var score float64
		for _, t := range terms {
			f := float64(rec.TermFreq[t])
			if f == 0 {
				continue
			}
			num := idf[t] * f * (idx.k1 + 1)
			den := f + idx.k1*(1-idx.b+idx.b*float64(rec.Length)/avgdl)
			score += num / den
		}
		if score > 0 {
			hits = append(hits, Hit{ChunkID: chunkID, Score: score})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// Clear empties the index.
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.chunks = make(map[string]chunkRecord)
	idx.df = make(map[string]int)
	idx.totalLen = 0
}

// Count returns the number of indexed chunks.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks)
}

// Persist serializes the index's BM25 statistics to path for restart
// survival.
func (idx *Index) Persist(path string) error {
	idx.mu.RLock()
	snap := snapshot{K1: idx.k1, B: idx.b, Chunks: idx.chunks}
	b, err := json.Marshal(snap)
	idx.mu.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Load replaces the index's contents with the snapshot stored at path.
func (idx *Index) Load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var snap snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if snap.K1 > 0 {
		idx.k1 = snap.K1
	}
	if snap.B >= 0 {
		idx.b = snap.B
	}
	idx.chunks = make(map[string]chunkRecord, len(snap.Chunks))
	idx.df = make(map[string]int)
	idx.totalLen = 0
	for chunkID, rec := range snap.Chunks {
		idx.chunks[chunkID] = rec
		for t := range rec.TermFreq {
			idx.df[t]++
		}
		idx.totalLen += rec.Length
	}
	return nil
}

package retrieve

import "hybridrag/internal/rag/sparse"

// SparseRetriever queries the in-process BM25 index.
type SparseRetriever struct {
	Index *sparse.Index
}

func (r SparseRetriever) Name() string { return MethodSparse }

// Retrieve runs a BM25 search and converts hits to ranked candidates. It
// never blocks on I/O, so the caller's timeout mostly guards against a
// pathologically large corpus rather than network latency.
func (r SparseRetriever) Retrieve(req Request) []Candidate {
	if r.Index == nil {
		return nil
	}
	hits := r.Index.Search(req.Query, req.Language, req.KFanout)
	out := make([]Candidate, len(hits))
	for i, h := range hits {
		out[i] = Candidate{ChunkID: h.ChunkID, Rank: i + 1}
	}
	return out
}

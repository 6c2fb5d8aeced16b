package retrieve

import (
	"context"
	"sort"
)

const defaultRRFK = 60

// fuseEntry accumulates a chunk's cross-method state while fusing.
type fuseEntry struct {
	chunkID   string
	score     float64
	perMethod map[string]int
}

// Fuse combines per-method ranked candidate lists via Reciprocal Rank
// Fusion: score(c) = sum over methods containing c of 1/(rrfK+rank_i(c)).
// Ties are broken first by the number of contributing methods (descending),
// then by chunk id (ascending), matching the deterministic ordering spec'd
// for identical fused scores.
func Fuse(byMethod map[string][]Candidate, rrfK int) []fuseEntry {
	if rrfK <= 0 {
		rrfK = defaultRRFK
	}
	entries := make(map[string]*fuseEntry)
	order := make([]string, 0)

	for method, cands := range byMethod {
		for _, c := range cands {
			e, ok := entries[c.ChunkID]
			if !ok {
				e = &fuseEntry{chunkID: c.ChunkID, perMethod: make(map[string]int)}
				entries[c.ChunkID] = e
				order = append(order, c.ChunkID)
			}
			e.score += 1.0 / float64(rrfK+c.Rank)
			e.perMethod[method] = c.Rank
		}
	}

	out := make([]fuseEntry, 0, len(order))
	for _, id := range order {
		out = append(out, *entries[id])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		if len(out[i].perMethod) != len(out[j].perMethod) {
			return len(out[i].perMethod) > len(out[j].perMethod)
		}
		return out[i].chunkID < out[j].chunkID
	})
	return out
}

// BuildResults fuses byMethod, truncates to topK, and hydrates each surviving
// chunk's text/doc_id/language via lookup. Chunks the lookup can't resolve
// (a race with a concurrent admin_reset) are skipped rather than returned
// with empty text.
func BuildResults(ctx context.Context, byMethod map[string][]Candidate, rrfK, topK int, lookup ChunkLookup) []Result {
	fused := Fuse(byMethod, rrfK)
	out := make([]Result, 0, topK)
	rank := 0
	for _, e := range fused {
		if topK > 0 && len(out) >= topK {
			break
		}
		text, language, docID, ok := lookup.ChunkText(ctx, e.chunkID)
		if !ok {
			continue
		}
		rank++
		out = append(out, Result{
			ChunkID:   e.chunkID,
			DocID:     docID,
			Text:      text,
			Language:  language,
			RRFScore:  e.score,
			Rank:      rank,
			PerMethod: e.perMethod,
		})
	}
	return out
}

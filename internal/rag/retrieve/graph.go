package retrieve

import (
	"context"
	"sort"

	"hybridrag/internal/rag/extract"
	"hybridrag/internal/store"
)

// graphHops is the traversal depth used by find_chunks_by_entities.
const graphHops = 2

// GraphRetriever surfaces chunks reachable from entities mentioned in the
// query, weighted by edge confidence decayed over hop distance.
type GraphRetriever struct {
	Graph     store.GraphDB
	Extractor extract.Extractor
}

func (r GraphRetriever) Name() string { return MethodGraph }

// Retrieve extracts entity mentions from the query text, resolves each to
// graph entity ids by canonical name, and traverses the graph from the
// resolved set. A query that mentions no recognizable entities yields no
// candidates — this is a normal empty result, not an error.
func (r GraphRetriever) Retrieve(ctx context.Context, req Request) ([]Candidate, error) {
	if r.Graph == nil || r.Extractor == nil {
		return nil, nil
	}
	mentions, err := r.Extractor.Extract(req.Query, req.Language)
	if err != nil {
		return nil, err
	}
	if len(mentions) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{})
	var entityIDs []string
	for _, m := range mentions {
		ids, err := r.Graph.FindEntitiesByName(ctx, m.CanonicalName, req.Language)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				entityIDs = append(entityIDs, id)
			}
		}
	}
	if len(entityIDs) == 0 {
		return nil, nil
	}

	weights, err := r.Graph.FindChunksByEntities(ctx, entityIDs, graphHops, req.KFanout)
	if err != nil {
		return nil, err
	}
	sort.Slice(weights, func(i, j int) bool {
		if weights[i].Weight != weights[j].Weight {
			return weights[i].Weight > weights[j].Weight
		}
		return weights[i].ChunkID < weights[j].ChunkID
	})
	out := make([]Candidate, len(weights))
	for i, w := range weights {
		out[i] = Candidate{ChunkID: w.ChunkID, Rank: i + 1}
	}
	return out, nil
}

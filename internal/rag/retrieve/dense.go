package retrieve

import (
	"context"

	"github.com/rs/zerolog/log"

	"hybridrag/internal/rag/cache"
	"hybridrag/internal/rag/dense"
	"hybridrag/internal/store"
)

// DenseRetriever queries the vector store by cosine similarity over a
// query embedding produced by the configured Embedder. Cache is consulted
// before encoding the query and populated after a miss; a NoopCache makes
// this a plain always-encode path.
type DenseRetriever struct {
	Store    store.VectorStore
	Embedder dense.Embedder
	Cache    cache.EmbeddingCache
}

func (r DenseRetriever) Name() string { return MethodDense }

// Retrieve embeds the query text and performs a similarity search. Per spec
// §4.6.2 the language filter is applied only when req.DenseFilterLang is
// set (the engine wires this from the dense.language_filtered
// configuration option, itself defaulting to filtered).
func (r DenseRetriever) Retrieve(ctx context.Context, req Request) ([]Candidate, error) {
	if r.Store == nil || r.Embedder == nil {
		return nil, nil
	}
	vec, err := r.embedQuery(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	if vec == nil {
		return nil, nil
	}
	lang := ""
	if req.DenseFilterLang {
		lang = req.Language
	}
	points, err := r.Store.Search(ctx, vec, lang, req.KFanout)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, len(points))
	for i, p := range points {
		out[i] = Candidate{ChunkID: p.ChunkID, Rank: i + 1}
	}
	return out, nil
}

func (r DenseRetriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	c := r.Cache
	if c == nil {
		c = cache.NoopCache{}
	}
	model := r.Embedder.Name()
	if vec, hit, err := c.Get(ctx, model, query); err == nil && hit {
		return vec, nil
	}
	vecs, err := r.Embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, nil
	}
	if err := c.Set(ctx, model, query, vecs[0]); err != nil {
		log.Debug().Err(err).Msg("embedding_cache_set_failed")
	}
	return vecs[0], nil
}

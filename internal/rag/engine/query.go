package engine

import (
	"context"
	"strings"
	"time"

	"hybridrag/internal/observability"
	"hybridrag/internal/rag/ragerr"
	"hybridrag/internal/rag/retrieve"
)

// Query runs the 3-way sparse/dense/graph fan-out and Reciprocal Rank Fusion
// over req, filling in configured defaults for any zero fields.
func (e *Engine) Query(ctx context.Context, req retrieve.Request) ([]retrieve.Result, error) {
	for _, m := range req.Methods {
		if !retrieve.ValidMethod(m) {
			err := ragerr.New(ragerr.InvalidRequest, nil)
			e.metrics.IncCounter("query_total", map[string]string{"status": "invalid_request"})
			return nil, err
		}
	}
	if req.Query == "" {
		err := ragerr.New(ragerr.InvalidRequest, nil)
		e.metrics.IncCounter("query_total", map[string]string{"status": "invalid_request"})
		return nil, err
	}
	if req.TopK < 0 {
		err := ragerr.New(ragerr.InvalidRequest, nil)
		e.metrics.IncCounter("query_total", map[string]string{"status": "invalid_request"})
		return nil, err
	}
	if req.TopK == 0 {
		req.TopK = e.cfg.Fusion.TopKDefault
	}
	if !validLanguageTag(req.Language) {
		err := ragerr.New(ragerr.InvalidRequest, nil)
		e.metrics.IncCounter("query_total", map[string]string{"status": "invalid_request"})
		return nil, err
	}
	if req.KFanout <= 0 {
		req.KFanout = e.cfg.Fusion.KFanout
	}
	if req.KFanout < req.TopK {
		req.KFanout = req.TopK
	}
	if req.RRFK <= 0 {
		req.RRFK = e.cfg.Fusion.RRFK
	}
	if !req.DenseFilterLang {
		req.DenseFilterLang = e.cfg.Dense.LanguageFiltered
	}

	sparseR := retrieve.SparseRetriever{Index: e.sparse}
	denseR := retrieve.DenseRetriever{Store: e.vector, Embedder: e.embed, Cache: e.cache}
	graphR := retrieve.GraphRetriever{Graph: e.graph, Extractor: e.extr}

	logger := observability.LoggerWithTrace(ctx)
	start := time.Now()
	byMethod, methodErrs, err := retrieve.Fanout(ctx, sparseR, denseR, graphR, req, e.cfg.PerRetrieverTimeout())
	for _, me := range methodErrs {
		if kind, ok := ragerr.KindOf(me); ok && kind == ragerr.RetrieverTimeout {
			e.metrics.IncCounter("retriever_timeout_total", nil)
			logger.Warn().Err(me).Msg("retriever_timeout")
		}
	}
	if err != nil {
		e.metrics.IncCounter("query_total", map[string]string{"status": "all_retrievers_empty"})
		return nil, err
	}

	results := retrieve.BuildResults(ctx, byMethod, req.RRFK, req.TopK, e.ChunkLookup())
	e.metrics.ObserveHistogram("query_duration_ms", float64(time.Since(start).Milliseconds()), nil)
	e.metrics.IncCounter("query_total", map[string]string{"status": "ok"})
	return results, nil
}

// validLanguageTag reports whether tag is acceptable as a query language
// filter. Empty means "no language filter" and is always valid. A non-empty
// tag must look like a BCP-47 primary-language subtag, optionally followed
// by "-REGION": 2-8 ASCII letters, optionally "-" and 2-8 more ASCII
// letters, matching the tags the sparse tokenizer's stopword tables and the
// dense/graph language filters key on (e.g. "en", "es", "ar").
func validLanguageTag(tag string) bool {
	if tag == "" {
		return true
	}
	primary, region, hasRegion := strings.Cut(tag, "-")
	if !isAlpha(primary, 2, 8) {
		return false
	}
	if hasRegion && !isAlpha(region, 2, 8) {
		return false
	}
	return true
}

func isAlpha(s string, minLen, maxLen int) bool {
	if len(s) < minLen || len(s) > maxLen {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			if r < 'A' || r > 'Z' {
				return false
			}
		}
	}
	return true
}

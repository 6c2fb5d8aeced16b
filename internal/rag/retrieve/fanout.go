package retrieve

import (
	"context"
	"time"

	"hybridrag/internal/rag/ragerr"
)

// methodOutcome is one retriever's result, carried back over a channel so
// the fan-out can select without blocking on a slow method.
type methodOutcome struct {
	method     string
	candidates []Candidate
	err        error
}

// Fanout runs the sparse, dense, and graph retrievers concurrently, each
// bounded by its own perRetrieverTimeout. A retriever that exceeds its
// deadline contributes a RetrieverTimeout error for that method only; the
// other two methods are unaffected and their results are still used.
//
// If every method times out, errors, or returns zero candidates, Fanout
// returns an AllRetrieversEmpty error.
func Fanout(ctx context.Context, sparse SparseRetriever, dense DenseRetriever, graph GraphRetriever, req Request, perRetrieverTimeout time.Duration) (map[string][]Candidate, []error, error) {
	enabled := map[string]bool{MethodSparse: true, MethodDense: true, MethodGraph: true}
	if len(req.Methods) > 0 {
		enabled = map[string]bool{}
		for _, m := range req.Methods {
			enabled[m] = true
		}
	}

	results := make(map[string][]Candidate, 3)
	var errs []error

	out := make(chan methodOutcome, 3)

	run := func(method string, fn func(context.Context) ([]Candidate, error)) {
		cctx, cancel := context.WithTimeout(ctx, perRetrieverTimeout)
		defer cancel()
		done := make(chan methodOutcome, 1)
		go func() {
			cands, err := fn(cctx)
			done <- methodOutcome{method: method, candidates: cands, err: err}
		}()
		select {
		case r := <-done:
			out <- r
		case <-cctx.Done():
			out <- methodOutcome{method: method, err: ragerr.WithMethod(ragerr.RetrieverTimeout, method, cctx.Err())}
		}
	}

	active := 0
	if enabled[MethodSparse] {
		active++
		go run(MethodSparse, func(_ context.Context) ([]Candidate, error) {
			return sparse.Retrieve(req), nil
		})
	}
	if enabled[MethodDense] {
		active++
		go run(MethodDense, func(c context.Context) ([]Candidate, error) {
			return dense.Retrieve(c, req)
		})
	}
	if enabled[MethodGraph] {
		active++
		go run(MethodGraph, func(c context.Context) ([]Candidate, error) {
			return graph.Retrieve(c, req)
		})
	}

	anyCandidates := false
	for i := 0; i < active; i++ {
		r := <-out
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		results[r.method] = r.candidates
		if len(r.candidates) > 0 {
			anyCandidates = true
		}
	}

	if !anyCandidates {
		return results, errs, ragerr.New(ragerr.AllRetrieversEmpty, nil)
	}
	return results, errs, nil
}

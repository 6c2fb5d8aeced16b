package engine

import "context"

// Health reports per-component availability: sparse (always true, it's
// in-process), dense and graph (pinged against their backends), and
// extractor (true whenever one is configured).
type Health struct {
	Sparse    bool
	Dense     bool
	Graph     bool
	Extractor bool
}

// Healthy reports whether every component is available.
func (h Health) Healthy() bool {
	return h.Sparse && h.Dense && h.Graph && h.Extractor
}

// Health probes each component's availability.
func (e *Engine) Health(ctx context.Context) Health {
	h := Health{Sparse: true, Extractor: e.extr != nil}
	if e.vector != nil {
		h.Dense = e.vector.Ping(ctx) == nil
	}
	if e.graph != nil {
		h.Graph = e.graph.Ping(ctx) == nil
	}
	return h
}

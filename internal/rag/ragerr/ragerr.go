// Package ragerr defines the engine's typed error-kind taxonomy. Every
// failure surfaced across ingest, retrieve, and the top-level engine carries
// one of these kinds so callers can branch on failure mode rather than on
// error string matching.
package ragerr

import (
	"errors"
	"fmt"
)

// Kind identifies a category of engine failure.
type Kind string

const (
	// EmptyDocument: ingest was called with a document containing no
	// extractable text after normalization.
	EmptyDocument Kind = "empty_document"
	// GraphUnavailable: the graph store could not be reached or failed a
	// write during ingestion; ingestion aborts with no partial writes.
	GraphUnavailable Kind = "graph_unavailable"
	// IndexWriteFailed: an index failed to accept a write after one retry.
	// Method names the index. The ingestion coordinator raises it only for
	// the sparse index ("sparse"); dense-side failures are EncoderError.
	IndexWriteFailed Kind = "index_write_failed"
	// EncoderError: the dense write path failed after one retry. The
	// ingestion coordinator reports both embedding failures and vector-store
	// upsert failures under this kind, with Method "dense".
	EncoderError Kind = "encoder_error"
	// RetrieverTimeout: one retrieval method did not return within its
	// per-retriever deadline. Method distinguishes which retriever.
	RetrieverTimeout Kind = "retriever_timeout"
	// InvalidRequest: the caller supplied a malformed or unsupported
	// request (e.g. an unknown retrieval method alias).
	InvalidRequest Kind = "invalid_request"
	// AllRetrieversEmpty: every retrieval method returned zero candidates
	// (or failed) for a query.
	AllRetrieversEmpty Kind = "all_retrievers_empty"
)

// Error is the concrete error type carrying a Kind, an optional Method
// (populated for IndexWriteFailed and RetrieverTimeout), and an optional
// wrapped cause.
type Error struct {
	Kind   Kind
	Method string
	Cause  error
}

func (e *Error) Error() string {
	if e.Method != "" && e.Cause != nil {
		return fmt.Sprintf("%s[%s]: %v", e.Kind, e.Method, e.Cause)
	}
	if e.Method != "" {
		return fmt.Sprintf("%s[%s]", e.Kind, e.Method)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an *Error with no method qualifier.
func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// WithMethod constructs an *Error qualified by the retriever or index method
// name that failed.
func WithMethod(kind Kind, method string, cause error) *Error {
	return &Error{Kind: kind, Method: method, Cause: cause}
}

// Is reports whether err (or any error it wraps) carries kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the Kind of err, if any.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

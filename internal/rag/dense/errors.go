package dense

import "errors"

// ErrEncodeCountMismatch is returned when the embedder produces a different
// number of vectors than requested texts — a defensive check against a
// misbehaving encoder backend.
var ErrEncodeCountMismatch = errors.New("dense: embedder returned a different vector count than input texts")

// Package ids centralizes every deterministic identifier construction used
// across the engine, so the Chunker, Graph Store, Sparse Index, and Dense
// Index all agree on the same chunk/document/entity identity.
package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// DocumentID returns the 16-hex content-hash id for raw document bytes.
// Identical bytes always yield an identical id, which is what makes
// re-ingestion idempotent.
func DocumentID(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:16]
}

// ChunkID builds the id for ordinal n of document docID: "<doc_id>_chunk_<n>".
func ChunkID(docID string, ordinal int) string {
	return fmt.Sprintf("%s_chunk_%d", docID, ordinal)
}

// ParseChunkID recovers the doc_id and ordinal from a chunk id produced by
// ChunkID. ok is false if id isn't in the expected shape.
func ParseChunkID(id string) (docID string, ordinal int, ok bool) {
	idx := strings.LastIndex(id, "_chunk_")
	if idx < 0 {
		return "", 0, false
	}
	docID = id[:idx]
	var n int
	if _, err := fmt.Sscanf(id[idx+len("_chunk_"):], "%d", &n); err != nil {
		return "", 0, false
	}
	return docID, n, true
}

// EntityID returns a stable hash of (canonical_name, type), 16-hex, so the
// same named entity of the same type always resolves to the same node.
func EntityID(canonicalName, entityType string) string {
	key := strings.ToLower(strings.TrimSpace(canonicalName)) + "\x00" + strings.ToUpper(strings.TrimSpace(entityType))
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}

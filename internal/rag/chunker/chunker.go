// Package chunker splits parsed document text into ordered, deterministically
// identified chunks (spec component C1).
package chunker

import (
	"strings"

	"hybridrag/internal/rag/ids"
	"hybridrag/internal/rag/lang"
)

// Chunk is one paragraph-bounded unit of a document's text.
type Chunk struct {
	ID       string
	DocID    string
	Ordinal  int
	Text     string
	Language string
}

// Chunker splits normalized document text into an ordered sequence of chunks.
type Chunker interface {
	Chunk(docID, text, language string) []Chunk
}

// ParagraphChunker implements the paragraph-boundary splitter: maximal runs
// of non-empty lines separated by one or more blank lines, trimmed, with
// empty chunks dropped. It performs no semantic re-chunking, so re-ingesting
// identical bytes always yields identical chunk ids.
type ParagraphChunker struct{}

// Chunk implements Chunker.
func (ParagraphChunker) Chunk(docID, text, language string) []Chunk {
	normalized := lang.NFC(text)
	lines := strings.Split(normalized, "\n")

	var out []Chunk
	var buf strings.Builder
	ordinal := 0

	flush := func() {
		s := strings.TrimSpace(buf.String())
		buf.Reset()
		if s == "" {
			return
		}
		out = append(out, Chunk{
			ID:       ids.ChunkID(docID, ordinal),
			DocID:    docID,
			Ordinal:  ordinal,
			Text:     s,
			Language: language,
		})
		ordinal++
	}

	for _, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			flush()
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(ln)
	}
	flush()
	return out
}

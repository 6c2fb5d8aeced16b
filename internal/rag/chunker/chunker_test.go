package chunker

import (
	"strconv"
	"strings"
	"testing"
)

func genParagraphs(n int) string {
	paras := make([]string, n)
	for i := range paras {
		paras[i] = "This is paragraph number " + strconv.Itoa(i) + " and it has a few words in it."
	}
	return strings.Join(paras, "\n\n")
}

func TestParagraphChunker_SplitsOnBlankLines(t *testing.T) {
	text := genParagraphs(3)
	chunks := ParagraphChunker{}.Chunk("doc1", text, "en")
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Ordinal != i {
			t.Fatalf("chunk %d has ordinal %d", i, c.Ordinal)
		}
		if c.ID != "doc1_chunk_"+strconv.Itoa(i) {
			t.Fatalf("unexpected chunk id %s", c.ID)
		}
	}
}

func TestParagraphChunker_NoBlankLinesIsOneChunk(t *testing.T) {
	chunks := ParagraphChunker{}.Chunk("doc1", "line one\nline two\nline three", "en")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
}

func TestParagraphChunker_WhitespaceOnlyYieldsZeroChunks(t *testing.T) {
	chunks := ParagraphChunker{}.Chunk("doc1", "   \n\n\t\n   ", "en")
	if len(chunks) != 0 {
		t.Fatalf("expected 0 chunks for whitespace-only input, got %d", len(chunks))
	}
}

func TestParagraphChunker_DeterministicAcrossRuns(t *testing.T) {
	text := genParagraphs(5)
	a := ParagraphChunker{}.Chunk("doc1", text, "en")
	b := ParagraphChunker{}.Chunk("doc1", text, "en")
	if len(a) != len(b) {
		t.Fatalf("expected identical chunk counts, got %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Text != b[i].Text {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestParagraphChunker_DropsEmptyChunksFromExtraBlankLines(t *testing.T) {
	chunks := ParagraphChunker{}.Chunk("doc1", "first\n\n\n\nsecond", "en")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
}

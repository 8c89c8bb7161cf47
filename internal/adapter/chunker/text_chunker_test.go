package chunker

import (
	"strings"
	"testing"
)

func TestChunkEmpty(t *testing.T) {
	c := NewTextChunker(1000, 200)
	if got := c.Chunk(""); got != nil {
		t.Errorf("Chunk(\"\") = %v, want nil", got)
	}
	if got := c.Chunk("   \n\n  "); got != nil {
		t.Errorf("whitespace-only content produced chunks: %v", got)
	}
}

func TestChunkShortText(t *testing.T) {
	c := NewTextChunker(1000, 200)
	got := c.Chunk("a short document")
	if len(got) != 1 || got[0] != "a short document" {
		t.Errorf("Chunk = %v, want the text unmodified", got)
	}
}

func TestChunkRespectsSize(t *testing.T) {
	c := NewTextChunker(100, 20)
	text := strings.Repeat("word ", 200)

	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > 100 {
			t.Errorf("chunk %d is %d chars, want <= 100", i, n)
		}
	}
}

func TestChunkPrefersParagraphBoundary(t *testing.T) {
	para1 := strings.Repeat("a", 60)
	para2 := strings.Repeat("b", 60)
	c := NewTextChunker(100, 10)

	chunks := c.Chunk(para1 + "\n\n" + para2)
	if len(chunks) < 2 {
		t.Fatalf("expected a split, got %d chunks", len(chunks))
	}
	if chunks[0] != para1 {
		t.Errorf("first chunk = %q, want it cut at the paragraph boundary", chunks[0])
	}
}

func TestChunkOverlap(t *testing.T) {
	// Continuous text with no separators forces hard cuts, making the
	// overlap window easy to observe.
	text := strings.Repeat("x", 250)
	c := NewTextChunker(100, 20)

	chunks := c.Chunk(text)
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}

	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}
	// Overlap means the chunks together cover more characters than the
	// input text.
	if total <= len(text) {
		t.Errorf("total chunk chars = %d, want > %d from overlap", total, len(text))
	}
}

func TestChunkIDStable(t *testing.T) {
	a := ChunkID("hash", 3)
	b := ChunkID("hash", 3)
	if a != b {
		t.Error("ChunkID not deterministic")
	}
	if a == ChunkID("hash", 4) || a == ChunkID("other", 3) {
		t.Error("ChunkID collides across inputs")
	}
}

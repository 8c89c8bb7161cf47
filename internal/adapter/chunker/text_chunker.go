package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// separators, coarsest first. The splitter prefers breaking on
// paragraph boundaries and degrades toward arbitrary cuts.
var separators = []string{"\n\n", "\n", ". ", " "}

// TextChunker splits document text into overlapping character-bounded
// chunks, preferring natural boundaries.
type TextChunker struct {
	chunkSize int // max characters per chunk
	overlap   int // characters carried over between adjacent chunks
}

func NewTextChunker(chunkSize, overlap int) *TextChunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &TextChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Chunk splits content into pieces of at most chunkSize characters.
// Whitespace-only pieces are dropped.
func (c *TextChunker) Chunk(content string) []string {
	runes := []rune(content)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0

	for start < len(runes) {
		end := start + c.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = c.splitPoint(runes, start, end)
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, piece)
		}

		if end == len(runes) {
			break
		}

		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// splitPoint searches backwards from the size limit for the coarsest
// separator available, so chunks end on paragraph, line, or sentence
// boundaries when the text allows it.
func (c *TextChunker) splitPoint(runes []rune, start, limit int) int {
	window := string(runes[start:limit])

	// Don't accept a boundary in the first tenth of the window; a cut
	// that early would produce degenerate slivers.
	minOffset := c.chunkSize / 10

	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx > minOffset {
			return start + len([]rune(window[:idx+len(sep)]))
		}
	}

	return limit
}

// ChunkID derives a stable chunk identifier from the source file hash
// and the chunk position.
func ChunkID(fileHash string, index int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", fileHash, index)))
	return hex.EncodeToString(sum[:16])
}

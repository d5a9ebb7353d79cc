package chunk

import (
	"fmt"
	"strings"
)

// Default splitting parameters for query-time retrieval.
const (
	DefaultSize    = 500
	DefaultOverlap = 50
)

// separators is the boundary hierarchy, coarsest first: paragraph break,
// line break, sentence end, word gap.
var separators = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

// Chunk is a bounded substring of a document's extracted text.
type Chunk struct {
	Index int
	Start int
	Text  string
}

// Split cuts text into chunks of at most size characters where adjacent
// chunks share exactly overlap characters. Every chunk is a contiguous
// substring of the input: concatenating the first chunk with each later
// chunk minus its leading overlap characters reconstructs the input.
//
// Cut points are chosen at the coarsest separator found inside the current
// window, falling back to a hard character cut when no separator fits.
// size must be greater than overlap, and overlap must be non-negative;
// violating either is a configuration error.
func Split(text string, size, overlap int) []Chunk {
	if size <= 0 || overlap < 0 || size <= overlap {
		panic(fmt.Sprintf("chunk: invalid parameters size=%d overlap=%d", size, overlap))
	}
	if text == "" {
		return nil
	}

	var chunks []Chunk
	start := 0
	for {
		if len(text)-start <= size {
			chunks = append(chunks, Chunk{Index: len(chunks), Start: start, Text: text[start:]})
			return chunks
		}

		cut := cutPoint(text, start, size, overlap)
		chunks = append(chunks, Chunk{Index: len(chunks), Start: start, Text: text[start:cut]})
		start = cut - overlap
	}
}

// cutPoint returns the end of the chunk beginning at start. It picks the
// last occurrence of the coarsest separator whose cut lands strictly after
// start+overlap, so the next chunk always makes progress. The separator
// stays attached to the chunk it terminates.
func cutPoint(text string, start, size, overlap int) int {
	window := text[start : start+size]
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := start + idx + len(sep)
		if cut > start+overlap {
			return cut
		}
	}
	return start + size
}

// Join reassembles chunks produced by Split with the given overlap back
// into the original text.
func Join(chunks []Chunk, overlap int) string {
	var b strings.Builder
	for i, c := range chunks {
		if i == 0 {
			b.WriteString(c.Text)
			continue
		}
		b.WriteString(c.Text[overlap:])
	}
	return b.String()
}

package qa

import (
	"fmt"
	"strings"

	"docchat-backend/internal/retrieval"
)

// contextPrompt renders the retrieved chunks into the system prompt handed
// to the model.
func contextPrompt(results []retrieval.Result) string {
	var b strings.Builder
	b.WriteString("You are an assistant answering questions about an uploaded document. ")
	b.WriteString("Answer using only the context passages below. ")
	b.WriteString("If the context does not contain the answer, say so instead of guessing.\n\nContext:\n")

	if len(results) == 0 {
		b.WriteString("(no relevant passages found)\n")
		return b.String()
	}

	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, strings.TrimSpace(r.Chunk.Text))
	}
	return b.String()
}

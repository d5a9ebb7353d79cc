package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"

	"docchat-backend/internal/chunk"
	"docchat-backend/internal/llm"
)

// Result pairs a retrieved chunk with its similarity score.
type Result struct {
	Chunk chunk.Chunk
	Score float64
}

// Index is an ephemeral similarity index over a document's chunks.
// Vectors are L2-normalized at build time so cosine similarity reduces to a
// dot product.
type Index struct {
	embedder llm.Embedder
	chunks   []chunk.Chunk
	vectors  [][]float64
}

// BuildIndex embeds every chunk and returns a queryable index. An embedding
// failure propagates to the caller.
func BuildIndex(ctx context.Context, embedder llm.Embedder, chunks []chunk.Chunk) (*Index, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	var vectors [][]float64
	if len(texts) > 0 {
		var err error
		vectors, err = embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(chunks) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
		}
		for i := range vectors {
			vectors[i] = normalize(vectors[i])
		}
	}

	return &Index{embedder: embedder, chunks: chunks, vectors: vectors}, nil
}

// TopK returns the k most similar chunks to the query, descending by score.
// Ties are broken by original chunk order.
func (ix *Index) TopK(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 || len(ix.chunks) == 0 {
		return nil, nil
	}

	queryVecs, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(queryVecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for query", len(queryVecs))
	}
	queryVec := normalize(queryVecs[0])

	results := make([]Result, len(ix.chunks))
	for i := range ix.chunks {
		results[i] = Result{Chunk: ix.chunks[i], Score: dot(ix.vectors[i], queryVec)}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(v []float64) []float64 {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return v
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

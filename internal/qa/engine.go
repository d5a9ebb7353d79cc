package qa

import (
	"context"
	"errors"
	"fmt"

	"docchat-backend/internal/chunk"
	"docchat-backend/internal/llm"
	"docchat-backend/internal/memory"
	"docchat-backend/internal/retrieval"
)

// Typed failures surfaced to the query caller.
var (
	ErrRetrieval = errors.New("retrieval failure")
	ErrModel     = errors.New("model failure")
)

// Source is a citation for a retrieved chunk backing an answer.
type Source struct {
	Index   int     `json:"index"`
	Excerpt string  `json:"excerpt"`
	Score   float64 `json:"score"`
}

// Answer is the result of a retrieval-augmented query.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Request carries one query through the engine. ChatKey identifies the
// conversation memory to recall and record; an empty key yields a fresh,
// private memory for just this call.
type Request struct {
	DocumentID string
	Text       string
	Query      string
	ChatKey    string
}

// Engine orchestrates chunking, retrieval, conversation memory, and the
// model call. It does not retry model failures; transient errors propagate
// to the caller.
type Engine struct {
	LLM      llm.Client
	Embedder llm.Embedder
	Memory   *memory.Store
	Cache    retrieval.IndexCache

	ChunkSize    int
	ChunkOverlap int
	TopK         int
}

const defaultTopK = 4

// Answer runs the retrieval-augmented query pipeline and returns the model
// answer with its source citations.
func (e *Engine) Answer(ctx context.Context, req Request) (Answer, error) {
	size, overlap := e.chunkParams()
	topK := e.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	index, err := e.index(ctx, req.DocumentID, req.Text, size, overlap)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	results, err := index.TopK(ctx, req.Query, topK)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	sess := e.Memory.Session(req.ChatKey)
	sess.Lock()
	defer sess.Unlock()

	turns := sess.Recall()

	reply, err := e.LLM.Complete(ctx, llm.CompletionRequest{
		System:  contextPrompt(results),
		History: historyMessages(turns),
		User:    req.Query,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("%w: %v", ErrModel, err)
	}

	sess.Record(memory.Turn{Question: req.Query, Answer: reply})

	sources := make([]Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, Source{
			Index:   r.Chunk.Index,
			Excerpt: r.Chunk.Text,
			Score:   r.Score,
		})
	}

	return Answer{Answer: reply, Sources: sources}, nil
}

// Summarization uses coarser chunks and no conversation memory.
const (
	summaryChunkSize    = 1000
	summaryChunkOverlap = 100
	summaryQuery        = "Please provide a comprehensive summary of this document."
)

// Summarize answers a fixed summary question over the document. Nothing is
// recalled or recorded.
func (e *Engine) Summarize(ctx context.Context, documentID, text string) (string, error) {
	chunks := chunk.Split(text, summaryChunkSize, summaryChunkOverlap)
	index, err := retrieval.BuildIndex(ctx, e.Embedder, chunks)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	topK := e.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	results, err := index.TopK(ctx, summaryQuery, topK)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	reply, err := e.LLM.Complete(ctx, llm.CompletionRequest{
		System: contextPrompt(results),
		User:   summaryQuery,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModel, err)
	}
	return reply, nil
}

// index builds (or reuses) the retrieval index for a document. The index is
// rebuilt whenever the content hash changes; the processor invalidates
// entries on reprocessing.
func (e *Engine) index(ctx context.Context, documentID, text string, size, overlap int) (*retrieval.Index, error) {
	if e.Cache == nil || documentID == "" {
		return retrieval.BuildIndex(ctx, e.Embedder, chunk.Split(text, size, overlap))
	}

	hash := retrieval.ContentHash(text)
	if cached, ok := e.Cache.Get(documentID, hash); ok {
		return cached, nil
	}

	index, err := retrieval.BuildIndex(ctx, e.Embedder, chunk.Split(text, size, overlap))
	if err != nil {
		return nil, err
	}
	e.Cache.Put(documentID, hash, index)
	return index, nil
}

func (e *Engine) chunkParams() (int, int) {
	size := e.ChunkSize
	overlap := e.ChunkOverlap
	if size <= 0 {
		size = chunk.DefaultSize
	}
	if overlap < 0 || overlap >= size {
		overlap = chunk.DefaultOverlap
	}
	return size, overlap
}

func historyMessages(turns []memory.Turn) []llm.Message {
	if len(turns) == 0 {
		return nil
	}
	out := make([]llm.Message, 0, len(turns)*2)
	for _, t := range turns {
		out = append(out, llm.Message{Role: llm.RoleUser, Content: t.Question})
		out = append(out, llm.Message{Role: llm.RoleAssistant, Content: t.Answer})
	}
	return out
}

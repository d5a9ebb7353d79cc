package qa

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat-backend/internal/llm"
	"docchat-backend/internal/memory"
	"docchat-backend/internal/retrieval"
)

// wordEmbedder produces deterministic bag-of-words vectors, so texts sharing
// words score higher against each other.
type wordEmbedder struct {
	calls int
	err   error
}

func (e *wordEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v := make([]float64, 32)
		for _, w := range strings.Fields(strings.ToLower(t)) {
			h := fnv.New32a()
			h.Write([]byte(w))
			v[h.Sum32()%32]++
		}
		out[i] = v
	}
	return out, nil
}

// recordingLLM captures every completion request and replies with a canned
// answer.
type recordingLLM struct {
	requests []llm.CompletionRequest
	reply    string
	err      error
}

func (l *recordingLLM) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	l.requests = append(l.requests, req)
	if l.err != nil {
		return "", l.err
	}
	return l.reply, nil
}

const docText = "cats purr loudly\n\ndogs bark at night\n\nbirds sing softly"

func newTestEngine(model *recordingLLM, embedder *wordEmbedder) *Engine {
	return &Engine{
		LLM:          model,
		Embedder:     embedder,
		Memory:       memory.NewStore(1000),
		Cache:        retrieval.NewMemoryCache(),
		ChunkSize:    30,
		ChunkOverlap: 0,
		TopK:         2,
	}
}

func TestAnswerReturnsSourcesFromRetrieval(t *testing.T) {
	model := &recordingLLM{reply: "They bark at night."}
	engine := newTestEngine(model, &wordEmbedder{})

	ans, err := engine.Answer(context.Background(), Request{
		DocumentID: "doc-1",
		Text:       docText,
		Query:      "dogs bark at night",
		ChatKey:    "chat-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "They bark at night.", ans.Answer)
	require.Len(t, ans.Sources, 2)
	assert.Contains(t, ans.Sources[0].Excerpt, "dogs bark at night")
	assert.Greater(t, ans.Sources[0].Score, ans.Sources[1].Score)

	require.Len(t, model.requests, 1)
	assert.Contains(t, model.requests[0].System, "dogs bark at night")
	assert.Empty(t, model.requests[0].History)
	assert.Equal(t, "dogs bark at night", model.requests[0].User)
}

func TestAnswerRecallsHistoryOnSecondQuery(t *testing.T) {
	model := &recordingLLM{reply: "first answer"}
	engine := newTestEngine(model, &wordEmbedder{})

	_, err := engine.Answer(context.Background(), Request{
		DocumentID: "doc-1", Text: docText, Query: "what do cats do", ChatKey: "chat-1",
	})
	require.NoError(t, err)

	model.reply = "second answer"
	_, err = engine.Answer(context.Background(), Request{
		DocumentID: "doc-1", Text: docText, Query: "and dogs", ChatKey: "chat-1",
	})
	require.NoError(t, err)

	require.Len(t, model.requests, 2)
	history := model.requests[1].History
	require.Len(t, history, 2)
	assert.Equal(t, llm.RoleUser, history[0].Role)
	assert.Equal(t, "what do cats do", history[0].Content)
	assert.Equal(t, llm.RoleAssistant, history[1].Role)
	assert.Equal(t, "first answer", history[1].Content)
}

func TestAnswerChatsDoNotShareMemory(t *testing.T) {
	model := &recordingLLM{reply: "answer"}
	engine := newTestEngine(model, &wordEmbedder{})

	_, err := engine.Answer(context.Background(), Request{
		DocumentID: "doc-1", Text: docText, Query: "q1", ChatKey: "chat-1",
	})
	require.NoError(t, err)

	_, err = engine.Answer(context.Background(), Request{
		DocumentID: "doc-1", Text: docText, Query: "q2", ChatKey: "chat-2",
	})
	require.NoError(t, err)

	assert.Empty(t, model.requests[1].History)
}

func TestAnswerEmptyChatKeyIsStateless(t *testing.T) {
	model := &recordingLLM{reply: "answer"}
	engine := newTestEngine(model, &wordEmbedder{})

	for i := 0; i < 2; i++ {
		_, err := engine.Answer(context.Background(), Request{
			DocumentID: "doc-1", Text: docText, Query: "anonymous question",
		})
		require.NoError(t, err)
	}

	require.Len(t, model.requests, 2)
	assert.Empty(t, model.requests[1].History)
}

func TestAnswerReusesCachedIndex(t *testing.T) {
	embedder := &wordEmbedder{}
	engine := newTestEngine(&recordingLLM{reply: "answer"}, embedder)

	_, err := engine.Answer(context.Background(), Request{
		DocumentID: "doc-1", Text: docText, Query: "q1", ChatKey: "chat-1",
	})
	require.NoError(t, err)
	// One call for the chunks, one for the query.
	assert.Equal(t, 2, embedder.calls)

	_, err = engine.Answer(context.Background(), Request{
		DocumentID: "doc-1", Text: docText, Query: "q2", ChatKey: "chat-1",
	})
	require.NoError(t, err)
	// Cached index: only the query is embedded.
	assert.Equal(t, 3, embedder.calls)
}

func TestAnswerRebuildsIndexWhenTextChanges(t *testing.T) {
	embedder := &wordEmbedder{}
	engine := newTestEngine(&recordingLLM{reply: "answer"}, embedder)

	_, err := engine.Answer(context.Background(), Request{
		DocumentID: "doc-1", Text: docText, Query: "q1", ChatKey: "chat-1",
	})
	require.NoError(t, err)

	_, err = engine.Answer(context.Background(), Request{
		DocumentID: "doc-1", Text: docText + "\n\nnew paragraph", Query: "q2", ChatKey: "chat-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, embedder.calls)
}

func TestAnswerRetrievalFailure(t *testing.T) {
	engine := newTestEngine(&recordingLLM{reply: "answer"}, &wordEmbedder{err: errors.New("provider down")})

	_, err := engine.Answer(context.Background(), Request{
		DocumentID: "doc-1", Text: docText, Query: "q", ChatKey: "chat-1",
	})
	assert.ErrorIs(t, err, ErrRetrieval)
}

func TestAnswerModelFailureRecordsNothing(t *testing.T) {
	model := &recordingLLM{err: errors.New("rate limited")}
	engine := newTestEngine(model, &wordEmbedder{})

	_, err := engine.Answer(context.Background(), Request{
		DocumentID: "doc-1", Text: docText, Query: "q", ChatKey: "chat-1",
	})
	require.ErrorIs(t, err, ErrModel)

	assert.Empty(t, engine.Memory.Session("chat-1").Recall())
}

func TestSummarizeSkipsConversationMemory(t *testing.T) {
	model := &recordingLLM{reply: "A document about animals."}
	engine := newTestEngine(model, &wordEmbedder{})

	summary, err := engine.Summarize(context.Background(), "doc-1", docText)
	require.NoError(t, err)
	assert.Equal(t, "A document about animals.", summary)

	require.Len(t, model.requests, 1)
	assert.Empty(t, model.requests[0].History)
	assert.NotEmpty(t, model.requests[0].User)
}

package llm

import (
	"context"
	"errors"
)

// Roles used in completion history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn handed to the completion provider.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest captures the inputs for one model call.
type CompletionRequest struct {
	System  string
	History []Message
	User    string
}

// Client abstracts chat-completion providers.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Embedder abstracts embedding providers. The returned vectors are
// positionally aligned with the input texts.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// ErrNotConfigured is returned by the placeholder implementations.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderClient is a stub used when no provider is configured.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotConfigured
}

// PlaceholderEmbedder is a stub used when no provider is configured.
type PlaceholderEmbedder struct{}

// Embed returns ErrNotConfigured.
func (PlaceholderEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	_ = ctx
	_ = texts
	return nil, ErrNotConfigured
}

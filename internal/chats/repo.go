package chats

import "context"

// Repo defines persistence operations for chats and their messages.
type Repo interface {
	CreateChat(ctx context.Context, chat Chat) error
	// ListChats returns chats without messages, most recently updated
	// first. Empty filter values match everything.
	ListChats(ctx context.Context, employeeID, documentID string) ([]Chat, error)
	// GetChat returns the chat with its messages in chronological order.
	GetChat(ctx context.Context, id string) (Chat, error)
	// AppendMessage appends one message and bumps the chat's updated_at.
	AppendMessage(ctx context.Context, msg Message) error
	// AppendTurn durably appends the user message before the ai message
	// and bumps updated_at, all atomically: a failure persists neither.
	AppendTurn(ctx context.Context, chatID string, user, ai Message) error
}

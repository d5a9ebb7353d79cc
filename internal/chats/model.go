package chats

import (
	"time"

	"docchat-backend/internal/qa"
)

// Message types.
const (
	TypeUser = "user"
	TypeAI   = "ai"
)

// AiMetadata carries the source citations attached to an ai message. User
// messages have no metadata.
type AiMetadata struct {
	Sources []qa.Source `json:"sources"`
}

// Message is one immutable turn inside a chat.
type Message struct {
	ID        string
	ChatID    string
	Type      string
	Content   string
	Metadata  *AiMetadata
	CreatedAt time.Time
}

// Chat groups the messages exchanged about one owning document.
type Chat struct {
	ID         string
	Title      string
	EmployeeID string
	DocumentID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Messages   []Message
}

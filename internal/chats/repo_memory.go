package chats

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu       sync.RWMutex
	chats    map[string]Chat
	messages map[string][]Message // chatID -> messages in append order
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		chats:    make(map[string]Chat),
		messages: make(map[string][]Message),
	}
}

// CreateChat stores a new chat.
func (r *MemoryRepo) CreateChat(ctx context.Context, chat Chat) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	chat.Messages = nil
	r.chats[chat.ID] = chat
	return nil
}

// ListChats returns chats matching the filters, most recently updated first.
func (r *MemoryRepo) ListChats(ctx context.Context, employeeID, documentID string) ([]Chat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Chat, 0, len(r.chats))
	for _, chat := range r.chats {
		if employeeID != "" && chat.EmployeeID != employeeID {
			continue
		}
		if documentID != "" && chat.DocumentID != documentID {
			continue
		}
		out = append(out, chat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// GetChat returns a chat with its messages in chronological order.
func (r *MemoryRepo) GetChat(ctx context.Context, id string) (Chat, error) {
	if err := ctx.Err(); err != nil {
		return Chat{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	chat, ok := r.chats[id]
	if !ok {
		return Chat{}, ErrNotFound
	}

	msgs := make([]Message, len(r.messages[id]))
	copy(msgs, r.messages[id])
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	chat.Messages = msgs
	return chat, nil
}

// AppendMessage appends one message and bumps updated_at.
func (r *MemoryRepo) AppendMessage(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appendLocked(msg)
}

// AppendTurn appends the user/ai pair atomically.
func (r *MemoryRepo) AppendTurn(ctx context.Context, chatID string, user, ai Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.chats[chatID]; !ok {
		return ErrNotFound
	}
	if err := r.appendLocked(user); err != nil {
		return err
	}
	return r.appendLocked(ai)
}

func (r *MemoryRepo) appendLocked(msg Message) error {
	chat, ok := r.chats[msg.ChatID]
	if !ok {
		return ErrNotFound
	}
	r.messages[msg.ChatID] = append(r.messages[msg.ChatID], msg)
	if msg.CreatedAt.After(chat.UpdatedAt) {
		chat.UpdatedAt = msg.CreatedAt
		r.chats[msg.ChatID] = chat
	}
	return nil
}

var _ Repo = (*MemoryRepo)(nil)

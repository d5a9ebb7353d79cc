package chats

import (
	"time"

	"docchat-backend/internal/qa"
)

// CreateChatRequest is the payload for creating a chat.
type CreateChatRequest struct {
	Title      string `json:"title" binding:"required"`
	DocumentID string `json:"documentId" binding:"required"`
	EmployeeID string `json:"employeeId"`
}

// QueryRequest is the payload for a retrieval-augmented query.
type QueryRequest struct {
	DocumentID string `json:"documentId" binding:"required"`
	Query      string `json:"query" binding:"required"`
	ChatID     string `json:"chatId"`
}

// MessageResponse is the outward-facing representation of a message.
type MessageResponse struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Content   string      `json:"content"`
	Sources   []qa.Source `json:"sources,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ChatResponse is the outward-facing representation of a chat.
type ChatResponse struct {
	ChatID     string            `json:"chatId"`
	Title      string            `json:"title"`
	EmployeeID string            `json:"employeeId,omitempty"`
	DocumentID string            `json:"documentId"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	Messages   []MessageResponse `json:"messages,omitempty"`
}

func toChatResponse(chat Chat) ChatResponse {
	resp := ChatResponse{
		ChatID:     chat.ID,
		Title:      chat.Title,
		EmployeeID: chat.EmployeeID,
		DocumentID: chat.DocumentID,
		CreatedAt:  chat.CreatedAt,
		UpdatedAt:  chat.UpdatedAt,
	}
	for _, msg := range chat.Messages {
		m := MessageResponse{
			ID:        msg.ID,
			Type:      msg.Type,
			Content:   msg.Content,
			Timestamp: msg.CreatedAt,
		}
		if msg.Metadata != nil {
			m.Sources = msg.Metadata.Sources
		}
		resp.Messages = append(resp.Messages, m)
	}
	return resp
}

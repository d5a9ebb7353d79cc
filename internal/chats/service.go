package chats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docchat-backend/internal/documents"
	"docchat-backend/internal/qa"
)

// Service owns the chat ledger and drives retrieval-augmented queries.
type Service struct {
	Repo      Repo
	Documents documents.Repo
	Engine    *qa.Engine
}

// CreateChat creates a chat bound to an existing document. The document
// need not be processed yet; readiness is checked at query time.
func (s *Service) CreateChat(ctx context.Context, title, documentID, employeeID string) (Chat, error) {
	if title == "" {
		return Chat{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if documentID == "" {
		return Chat{}, fmt.Errorf("%w: documentId is required", ErrInvalidInput)
	}

	if _, err := s.Documents.GetByID(ctx, documentID); err != nil {
		return Chat{}, err
	}

	now := time.Now().UTC()
	chat := Chat{
		ID:         uuid.NewString(),
		Title:      title,
		EmployeeID: employeeID,
		DocumentID: documentID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.CreateChat(ctx, chat); err != nil {
		return Chat{}, err
	}
	return chat, nil
}

// ListChats returns chats matching the filters, most recently updated first.
func (s *Service) ListChats(ctx context.Context, employeeID, documentID string) ([]Chat, error) {
	return s.Repo.ListChats(ctx, employeeID, documentID)
}

// GetChat returns a chat with its messages in chronological order.
func (s *Service) GetChat(ctx context.Context, id string) (Chat, error) {
	if id == "" {
		return Chat{}, fmt.Errorf("%w: chat id is required", ErrInvalidInput)
	}
	return s.Repo.GetChat(ctx, id)
}

// QueryInput carries one query request.
type QueryInput struct {
	DocumentID string
	Query      string
	ChatID     string
}

// Query answers a question against a processed document. With a chat id,
// the user/ai message pair is persisted atomically after the engine
// succeeds, user timestamp strictly before ai timestamp; an engine failure
// persists nothing. Without a chat id nothing is persisted.
func (s *Service) Query(ctx context.Context, in QueryInput) (qa.Answer, error) {
	if in.DocumentID == "" {
		return qa.Answer{}, fmt.Errorf("%w: documentId is required", ErrInvalidInput)
	}
	if in.Query == "" {
		return qa.Answer{}, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}

	doc, err := s.Documents.GetByID(ctx, in.DocumentID)
	if err != nil {
		return qa.Answer{}, err
	}
	if !doc.IsProcessed {
		return qa.Answer{}, fmt.Errorf("%w: document %s", ErrDocumentNotReady, doc.ID)
	}

	if in.ChatID != "" {
		if _, err := s.Repo.GetChat(ctx, in.ChatID); err != nil {
			return qa.Answer{}, err
		}
	}

	answer, err := s.Engine.Answer(ctx, qa.Request{
		DocumentID: doc.ID,
		Text:       doc.ExtractedText,
		Query:      in.Query,
		ChatKey:    in.ChatID,
	})
	if err != nil {
		return qa.Answer{}, err
	}

	if in.ChatID != "" {
		userAt := time.Now().UTC()
		user := Message{
			ID:        uuid.NewString(),
			ChatID:    in.ChatID,
			Type:      TypeUser,
			Content:   in.Query,
			CreatedAt: userAt,
		}
		ai := Message{
			ID:        uuid.NewString(),
			ChatID:    in.ChatID,
			Type:      TypeAI,
			Content:   answer.Answer,
			Metadata:  &AiMetadata{Sources: answer.Sources},
			CreatedAt: userAt.Add(time.Millisecond),
		}
		if err := s.Repo.AppendTurn(ctx, in.ChatID, user, ai); err != nil {
			return qa.Answer{}, fmt.Errorf("persist turn: %w", err)
		}
	}

	return answer, nil
}

// Summarize answers a fixed summary question over a processed document.
// Nothing is persisted.
func (s *Service) Summarize(ctx context.Context, documentID string) (string, error) {
	if documentID == "" {
		return "", fmt.Errorf("%w: documentId is required", ErrInvalidInput)
	}

	doc, err := s.Documents.GetByID(ctx, documentID)
	if err != nil {
		return "", err
	}
	if !doc.IsProcessed {
		return "", fmt.Errorf("%w: document %s", ErrDocumentNotReady, doc.ID)
	}

	return s.Engine.Summarize(ctx, doc.ID, doc.ExtractedText)
}

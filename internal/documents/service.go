package documents

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docchat-backend/internal/extract"
	"docchat-backend/internal/queue"
	"docchat-backend/internal/shared/storage/object"
)

// MaxUploadSize is the upload transport's size ceiling.
const MaxUploadSize = 10 << 20 // 10 MiB

// Service contains business logic for documents.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
	Queue queue.Client
}

// Upload validates the payload, archives the raw bytes, persists the
// document as unprocessed, and enqueues extraction. The returned task is a
// completion handle; the HTTP caller does not wait on it.
func (s *Service) Upload(ctx context.Context, fileName, mimeType, requestID string, raw []byte) (Document, *queue.Task, error) {
	if fileName == "" {
		return Document{}, nil, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	if len(raw) == 0 {
		return Document{}, nil, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if len(raw) > MaxUploadSize {
		return Document{}, nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, MaxUploadSize)
	}
	if !extract.Supported(mimeType, fileName, raw) {
		return Document{}, nil, fmt.Errorf("%w: %s", extract.ErrUnsupportedType, mimeType)
	}

	storageKey, _, err := s.Store.Save(ctx, "documents", fileName, bytes.NewReader(raw))
	if err != nil {
		return Document{}, nil, fmt.Errorf("archive upload: %w", err)
	}

	doc := Document{
		ID:          uuid.NewString(),
		FileName:    fileName,
		MimeType:    extract.Normalize(mimeType, fileName, raw),
		SizeBytes:   int64(len(raw)),
		StorageKey:  storageKey,
		IsProcessed: false,
		UploadedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, nil, err
	}

	task, err := s.Queue.Enqueue(ctx, queue.Message{DocumentID: doc.ID, RequestID: requestID}, raw)
	if err != nil {
		return Document{}, nil, fmt.Errorf("enqueue processing: %w", err)
	}

	return doc, task, nil
}

// Get returns a document by id.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("%w: document id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, id)
}

// List returns all documents, newest first.
func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.Repo.List(ctx)
}

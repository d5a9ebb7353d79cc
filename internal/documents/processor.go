package documents

import (
	"context"
	"fmt"
	"strings"

	"docchat-backend/internal/extract"
	"docchat-backend/internal/queue"
	"docchat-backend/internal/shared/storage/object"
	"docchat-backend/internal/shared/telemetry"
)

// IndexInvalidator drops any cached retrieval index for a document when its
// extraction result changes.
type IndexInvalidator interface {
	Invalidate(documentID string)
}

// Processor owns the extraction state machine:
// uploaded (processed=false) -> processing -> processed | failed.
// Failed is not terminal; reprocessing the same id overwrites prior results.
type Processor struct {
	Repo        Repo
	Store       object.ObjectStore
	Invalidator IndexInvalidator
}

// Handle adapts Process to the queue handler signature.
func (p *Processor) Handle(ctx context.Context, msg queue.Message, raw []byte) error {
	return p.Process(ctx, msg.DocumentID, raw)
}

// Process extracts text for the document and persists the outcome. Failures
// are recorded in persisted state and logged; the upload caller has already
// been answered, so nothing is surfaced to it.
func (p *Processor) Process(ctx context.Context, documentID string, raw []byte) error {
	doc, err := p.Repo.GetByID(ctx, documentID)
	if err != nil {
		telemetry.Error("document.process.lookup_failed", map[string]any{
			"document_id": documentID,
			"error":       err.Error(),
		})
		return fmt.Errorf("process document %s: %w", documentID, err)
	}

	text, err := extract.Text(raw, doc.MimeType, doc.FileName)
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("extraction produced no text")
	}
	if err != nil {
		if markErr := p.Repo.MarkFailed(ctx, documentID); markErr != nil {
			telemetry.Error("document.process.mark_failed", map[string]any{
				"document_id": documentID,
				"error":       markErr.Error(),
			})
		}
		telemetry.Error("document.process.failed", map[string]any{
			"document_id": documentID,
			"mime_type":   doc.MimeType,
			"error":       err.Error(),
		})
		return fmt.Errorf("process document %s: %w", documentID, err)
	}

	if doc.StorageKey != "" {
		extractedKey := doc.StorageKey + ".extracted.txt"
		if _, saveErr := p.Store.SaveWithKey(ctx, extractedKey, "text/plain; charset=utf-8", strings.NewReader(text)); saveErr != nil {
			telemetry.Error("document.process.archive_failed", map[string]any{
				"document_id": documentID,
				"storage_key": extractedKey,
				"error":       saveErr.Error(),
			})
		}
	}

	if err := p.Repo.SetExtracted(ctx, documentID, text); err != nil {
		telemetry.Error("document.process.persist_failed", map[string]any{
			"document_id": documentID,
			"error":       err.Error(),
		})
		return fmt.Errorf("process document %s: %w", documentID, err)
	}

	if p.Invalidator != nil {
		p.Invalidator.Invalidate(documentID)
	}

	telemetry.Info("document.processed", map[string]any{
		"document_id": documentID,
		"mime_type":   doc.MimeType,
		"text_len":    len(text),
	})
	return nil
}

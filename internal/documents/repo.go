package documents

import "context"

// Repo defines persistence operations for documents. The processor is the
// sole writer of the extraction fields.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	List(ctx context.Context) ([]Document, error)
	// SetExtracted stores the extracted text and marks the document
	// processed in a single write.
	SetExtracted(ctx context.Context, id string, text string) error
	// MarkFailed clears any extraction result and leaves the document
	// unprocessed.
	MarkFailed(ctx context.Context, id string) error
}

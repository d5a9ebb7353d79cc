package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (id, file_name, mime_type, size_bytes, storage_key, extracted_text, is_processed, uploaded_at)
VALUES ($1, $2, $3, $4, $5, NULL, $6, $7)`

	var storageKey sql.NullString
	if doc.StorageKey != "" {
		storageKey = sql.NullString{String: doc.StorageKey, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.FileName,
		doc.MimeType,
		doc.SizeBytes,
		storageKey,
		doc.IsProcessed,
		doc.UploadedAt,
	)
	return err
}

// GetByID fetches a document by id.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	const query = `
SELECT id, file_name, mime_type, size_bytes, storage_key, extracted_text, is_processed, uploaded_at
FROM documents
WHERE id = $1`

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// List returns all documents, newest first.
func (r *PGRepo) List(ctx context.Context) ([]Document, error) {
	const query = `
SELECT id, file_name, mime_type, size_bytes, storage_key, extracted_text, is_processed, uploaded_at
FROM documents
ORDER BY uploaded_at DESC, id`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// SetExtracted stores the extracted text and marks the document processed
// in one UPDATE so both fields become visible together.
func (r *PGRepo) SetExtracted(ctx context.Context, id string, text string) error {
	const query = `
UPDATE documents
SET extracted_text = $1, is_processed = TRUE
WHERE id = $2`

	res, err := r.DB.ExecContext(ctx, query, text, id)
	if err != nil {
		return err
	}
	if updated, _ := res.RowsAffected(); updated == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed clears the extraction result and leaves the document
// unprocessed.
func (r *PGRepo) MarkFailed(ctx context.Context, id string) error {
	const query = `
UPDATE documents
SET extracted_text = NULL, is_processed = FALSE
WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if updated, _ := res.RowsAffected(); updated == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var storageKey sql.NullString
	var extractedText sql.NullString
	if err := row.Scan(
		&doc.ID,
		&doc.FileName,
		&doc.MimeType,
		&doc.SizeBytes,
		&storageKey,
		&extractedText,
		&doc.IsProcessed,
		&doc.UploadedAt,
	); err != nil {
		return Document{}, err
	}
	if storageKey.Valid {
		doc.StorageKey = storageKey.String
	}
	if extractedText.Valid {
		doc.ExtractedText = extractedText.String
	}
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)

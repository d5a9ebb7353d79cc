package documents

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &PGRepo{DB: db}, mock
}

func documentColumns() []string {
	return []string{"id", "file_name", "mime_type", "size_bytes", "storage_key", "extracted_text", "is_processed", "uploaded_at"}
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).
		WithArgs("doc-1", "people.csv", "text/csv", int64(24), sqlmock.AnyArg(), false, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), Document{
		ID:         "doc-1",
		FileName:   "people.csv",
		MimeType:   "text/csv",
		SizeBytes:  24,
		StorageKey: "ns/people.csv",
		UploadedAt: now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(documentColumns()).
		AddRow("doc-1", "people.csv", "text/csv", int64(24), "ns/people.csv", "name, role", true, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, file_name, mime_type")).
		WithArgs("doc-1").
		WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, "name, role", doc.ExtractedText)
	assert.True(t, doc.IsProcessed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoGetByIDNullFields(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows(documentColumns()).
		AddRow("doc-1", "people.csv", "text/csv", int64(24), nil, nil, false, time.Now().UTC())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, file_name, mime_type")).
		WithArgs("doc-1").
		WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Empty(t, doc.StorageKey)
	assert.Empty(t, doc.ExtractedText)
	assert.False(t, doc.IsProcessed)
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, file_name, mime_type")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepoList(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(documentColumns()).
		AddRow("doc-2", "b.csv", "text/csv", int64(1), nil, nil, false, now).
		AddRow("doc-1", "a.csv", "text/csv", int64(1), nil, nil, true, now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY uploaded_at DESC")).
		WillReturnRows(rows)

	docs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-2", docs[0].ID)
	assert.Equal(t, "doc-1", docs[1].ID)
}

func TestPGRepoSetExtracted(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents")).
		WithArgs("extracted text", "doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetExtracted(context.Background(), "doc-1", "extracted text"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoSetExtractedNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents")).
		WithArgs("text", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetExtracted(context.Background(), "missing", "text")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepoMarkFailed(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents")).
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(context.Background(), "doc-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

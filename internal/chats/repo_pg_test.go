package chats

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat-backend/internal/qa"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &PGRepo{DB: db}, mock
}

func chatColumns() []string {
	return []string{"id", "title", "employee_id", "document_id", "created_at", "updated_at"}
}

func TestPGRepoCreateChat(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO chats")).
		WithArgs("chat-1", "My chat", "emp-1", "doc-1", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateChat(context.Background(), Chat{
		ID:         "chat-1",
		Title:      "My chat",
		EmployeeID: "emp-1",
		DocumentID: "doc-1",
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoGetChatWithMessages(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	metadata, err := json.Marshal(AiMetadata{Sources: []qa.Source{{Index: 0, Excerpt: "alpha", Score: 0.9}}})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM chats")).
		WithArgs("chat-1").
		WillReturnRows(sqlmock.NewRows(chatColumns()).
			AddRow("chat-1", "My chat", "emp-1", "doc-1", now, now))

	mock.ExpectQuery(regexp.QuoteMeta("FROM messages")).
		WithArgs("chat-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "chat_id", "type", "content", "metadata", "created_at"}).
			AddRow("msg-1", "chat-1", TypeUser, "question", nil, now).
			AddRow("msg-2", "chat-1", TypeAI, "answer", metadata, now.Add(time.Millisecond)))

	chat, err := repo.GetChat(context.Background(), "chat-1")
	require.NoError(t, err)
	require.Len(t, chat.Messages, 2)

	assert.Equal(t, TypeUser, chat.Messages[0].Type)
	assert.Nil(t, chat.Messages[0].Metadata)

	assert.Equal(t, TypeAI, chat.Messages[1].Type)
	require.NotNil(t, chat.Messages[1].Metadata)
	require.Len(t, chat.Messages[1].Metadata.Sources, 1)
	assert.Equal(t, "alpha", chat.Messages[1].Metadata.Sources[0].Excerpt)
}

func TestPGRepoGetChatNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM chats")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetChat(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepoListChatsPassesFilters(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM chats")).
		WithArgs("emp-1", "doc-1").
		WillReturnRows(sqlmock.NewRows(chatColumns()).
			AddRow("chat-1", "My chat", "emp-1", "doc-1", now, now))

	chatList, err := repo.ListChats(context.Background(), "emp-1", "doc-1")
	require.NoError(t, err)
	require.Len(t, chatList, 1)
	assert.Equal(t, "chat-1", chatList[0].ID)
}

func TestPGRepoAppendTurnCommitsBothMessages(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	user := Message{ID: "msg-1", ChatID: "chat-1", Type: TypeUser, Content: "question", CreatedAt: now}
	ai := Message{
		ID:        "msg-2",
		ChatID:    "chat-1",
		Type:      TypeAI,
		Content:   "answer",
		Metadata:  &AiMetadata{Sources: []qa.Source{{Index: 1, Excerpt: "beta", Score: 0.5}}},
		CreatedAt: now.Add(time.Millisecond),
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO messages")).
		WithArgs("msg-1", "chat-1", TypeUser, "question", nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO messages")).
		WithArgs("msg-2", "chat-1", TypeAI, "answer", sqlmock.AnyArg(), ai.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE chats SET updated_at")).
		WithArgs("chat-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.AppendTurn(context.Background(), "chat-1", user, ai))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoAppendTurnRollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	user := Message{ID: "msg-1", ChatID: "chat-1", Type: TypeUser, Content: "question", CreatedAt: now}
	ai := Message{ID: "msg-2", ChatID: "chat-1", Type: TypeAI, Content: "answer", CreatedAt: now.Add(time.Millisecond)}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO messages")).
		WithArgs("msg-1", "chat-1", TypeUser, "question", nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO messages")).
		WithArgs("msg-2", "chat-1", TypeAI, "answer", nil, ai.CreatedAt).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.AppendTurn(context.Background(), "chat-1", user, ai)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoAppendMessageTouchesChat(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO messages")).
		WithArgs("msg-1", "chat-1", TypeUser, "hello", nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE chats SET updated_at")).
		WithArgs("chat-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.AppendMessage(context.Background(), Message{
		ID:        "msg-1",
		ChatID:    "chat-1",
		Type:      TypeUser,
		Content:   "hello",
		CreatedAt: now,
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package chats

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateChat inserts a new chat.
func (r *PGRepo) CreateChat(ctx context.Context, chat Chat) error {
	const query = `
INSERT INTO chats (id, title, employee_id, document_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	var employeeID sql.NullString
	if chat.EmployeeID != "" {
		employeeID = sql.NullString{String: chat.EmployeeID, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		chat.ID,
		chat.Title,
		employeeID,
		chat.DocumentID,
		chat.CreatedAt,
		chat.UpdatedAt,
	)
	return err
}

// ListChats returns chats matching the filters, most recently updated first.
func (r *PGRepo) ListChats(ctx context.Context, employeeID, documentID string) ([]Chat, error) {
	const query = `
SELECT id, title, employee_id, document_id, created_at, updated_at
FROM chats
WHERE ($1 = '' OR employee_id = $1)
  AND ($2 = '' OR document_id::text = $2)
ORDER BY updated_at DESC, id`

	rows, err := r.DB.QueryContext(ctx, query, employeeID, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, chat)
	}
	return out, rows.Err()
}

// GetChat returns a chat with its messages in chronological order.
func (r *PGRepo) GetChat(ctx context.Context, id string) (Chat, error) {
	const chatQuery = `
SELECT id, title, employee_id, document_id, created_at, updated_at
FROM chats
WHERE id = $1`

	chat, err := scanChat(r.DB.QueryRowContext(ctx, chatQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Chat{}, ErrNotFound
		}
		return Chat{}, err
	}

	const msgQuery = `
SELECT id, chat_id, type, content, metadata, created_at
FROM messages
WHERE chat_id = $1
ORDER BY created_at, id`

	rows, err := r.DB.QueryContext(ctx, msgQuery, id)
	if err != nil {
		return Chat{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var msg Message
		var metadata []byte
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Type, &msg.Content, &metadata, &msg.CreatedAt); err != nil {
			return Chat{}, err
		}
		if len(metadata) > 0 {
			var meta AiMetadata
			if err := json.Unmarshal(metadata, &meta); err != nil {
				return Chat{}, fmt.Errorf("decode message metadata: %w", err)
			}
			msg.Metadata = &meta
		}
		chat.Messages = append(chat.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return Chat{}, err
	}
	return chat, nil
}

// AppendMessage appends one message and bumps the chat's updated_at.
func (r *PGRepo) AppendMessage(ctx context.Context, msg Message) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertMessage(ctx, tx, msg); err != nil {
		return err
	}
	if err := touchChat(ctx, tx, msg.ChatID); err != nil {
		return err
	}
	return tx.Commit()
}

// AppendTurn appends the user message before the ai message and bumps
// updated_at inside one transaction.
func (r *PGRepo) AppendTurn(ctx context.Context, chatID string, user, ai Message) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertMessage(ctx, tx, user); err != nil {
		return err
	}
	if err := insertMessage(ctx, tx, ai); err != nil {
		return err
	}
	if err := touchChat(ctx, tx, chatID); err != nil {
		return err
	}
	return tx.Commit()
}

func insertMessage(ctx context.Context, tx *sql.Tx, msg Message) error {
	const query = `
INSERT INTO messages (id, chat_id, type, content, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	var metadata any
	if msg.Metadata != nil {
		encoded, err := json.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("encode message metadata: %w", err)
		}
		metadata = encoded
	}

	_, err := tx.ExecContext(ctx, query, msg.ID, msg.ChatID, msg.Type, msg.Content, metadata, msg.CreatedAt)
	return err
}

func touchChat(ctx context.Context, tx *sql.Tx, chatID string) error {
	const query = `UPDATE chats SET updated_at = now() WHERE id = $1`
	res, err := tx.ExecContext(ctx, query, chatID)
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

func scanChat(row rowScanner) (Chat, error) {
	var chat Chat
	var employeeID sql.NullString
	if err := row.Scan(
		&chat.ID,
		&chat.Title,
		&employeeID,
		&chat.DocumentID,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	); err != nil {
		return Chat{}, err
	}
	if employeeID.Valid {
		chat.EmployeeID = employeeID.String
	}
	return chat, nil
}

var _ Repo = (*PGRepo)(nil)

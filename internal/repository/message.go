package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/universalchat/hub-go/internal/database"
	"github.com/universalchat/hub-go/internal/model"
)

type MessageRepository interface {
	Create(ctx context.Context, params model.CreateMessageParams, now time.Time) (*model.Message, error)
	// FindForRecipient returns direct messages to recipientID plus broadcasts
	// from other senders, oldest first. A nil since returns all history.
	FindForRecipient(ctx context.Context, recipientID string, since *time.Time) ([]model.Message, error)
	// FindConversation returns the limit most recent direct messages between
	// a and b plus broadcasts from third parties, newest first.
	FindConversation(ctx context.Context, a, b string, limit int) ([]model.Message, error)
	FindByThread(ctx context.Context, threadID string) ([]model.Message, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) MessageRepository
}

type messageRepo struct {
	db database.DBTX
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) WithTx(tx *sqlx.Tx) MessageRepository {
	return &messageRepo{db: tx}
}

func (r *messageRepo) Create(ctx context.Context, params model.CreateMessageParams, now time.Time) (*model.Message, error) {
	var msg model.Message
	err := r.db.GetContext(ctx, &msg, `
		INSERT INTO messages (sender_id, recipient_id, kind, body, thread_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING *
	`, params.SenderID, params.RecipientID, params.Kind, params.Body, params.ThreadID, now)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepo) FindForRecipient(ctx context.Context, recipientID string, since *time.Time) ([]model.Message, error) {
	var msgs []model.Message
	query := `
		SELECT * FROM messages
		WHERE (recipient_id = ? OR (recipient_id = ? AND sender_id != ?))
	`
	args := []any{recipientID, model.BroadcastRecipient, recipientID}
	if since != nil {
		query += ` AND created_at > ?`
		args = append(args, *since)
	}
	query += ` ORDER BY created_at ASC, message_id ASC`
	err := r.db.SelectContext(ctx, &msgs, query, args...)
	return msgs, err
}

func (r *messageRepo) FindConversation(ctx context.Context, a, b string, limit int) ([]model.Message, error) {
	var msgs []model.Message
	err := r.db.SelectContext(ctx, &msgs, `
		SELECT * FROM messages
		WHERE (sender_id = ? AND recipient_id = ?)
		   OR (sender_id = ? AND recipient_id = ?)
		   OR (recipient_id = ? AND sender_id NOT IN (?, ?))
		ORDER BY created_at DESC, message_id DESC
		LIMIT ?
	`, a, b, b, a, model.BroadcastRecipient, a, b, limit)
	return msgs, err
}

func (r *messageRepo) FindByThread(ctx context.Context, threadID string) ([]model.Message, error) {
	var msgs []model.Message
	err := r.db.SelectContext(ctx, &msgs, `
		SELECT * FROM messages
		WHERE thread_id = ?
		ORDER BY created_at ASC, message_id ASC
	`, threadID)
	return msgs, err
}

package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/universalchat/hub-go/internal/database"
	"github.com/universalchat/hub-go/internal/model"
)

type SessionRepository interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// Exists reports whether the id was ever registered. Sessions are never
	// hard-deleted, so this covers inactive sessions too.
	Exists(ctx context.Context, id string) (bool, error)
	Upsert(ctx context.Context, params model.RegisterSessionParams, now time.Time) (*model.Session, error)
	// ListActive returns sessions seen since cutoff, most recently seen first.
	ListActive(ctx context.Context, cutoff time.Time) ([]model.Session, error)
	ListActiveByPlatform(ctx context.Context, platform string, cutoff time.Time) ([]model.Session, error)
	Touch(ctx context.Context, id string, at time.Time) error
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) SessionRepository
}

type sessionRepo struct {
	db database.DBTX
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) WithTx(tx *sqlx.Tx) SessionRepository {
	return &sessionRepo{db: tx}
}

func (r *sessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `SELECT * FROM sessions WHERE session_id = ?`, id)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sessions WHERE session_id = ?`, id)
	return count > 0, err
}

func (r *sessionRepo) Upsert(ctx context.Context, params model.RegisterSessionParams, now time.Time) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		INSERT INTO sessions (session_id, platform, display_name, registered_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			platform = excluded.platform,
			display_name = excluded.display_name,
			last_seen_at = excluded.last_seen_at
		RETURNING *
	`, params.SessionID, params.Platform, params.DisplayName, now, now)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) ListActive(ctx context.Context, cutoff time.Time) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT * FROM sessions
		WHERE last_seen_at >= ?
		ORDER BY last_seen_at DESC
	`, cutoff)
	return sessions, err
}

func (r *sessionRepo) ListActiveByPlatform(ctx context.Context, platform string, cutoff time.Time) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT * FROM sessions
		WHERE platform = ? AND last_seen_at >= ?
		ORDER BY last_seen_at DESC
	`, platform, cutoff)
	return sessions, err
}

func (r *sessionRepo) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET last_seen_at = ? WHERE session_id = ?
	`, at, id)
	return err
}

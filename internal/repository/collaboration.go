package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/universalchat/hub-go/internal/database"
	"github.com/universalchat/hub-go/internal/model"
)

type CollaborationRepository interface {
	Create(ctx context.Context, params model.CreateCollaborationParams, now time.Time) (*model.CollaborationRequest, error)
	FindByID(ctx context.Context, id int64) (*model.CollaborationRequest, error)
	// Transition moves the request from one status to another. The guard is
	// the WHERE clause: zero affected rows means the request was not in the
	// expected status (or does not exist), which the caller maps to
	// INVALID_STATE / NOT_FOUND.
	Transition(ctx context.Context, id int64, from, to model.RequestStatus, resolvedAt *time.Time) (bool, error)
	ListByStatus(ctx context.Context, status model.RequestStatus) ([]model.CollaborationRequest, error)
	ListPendingForPlatform(ctx context.Context, platform string) ([]model.CollaborationRequest, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) CollaborationRepository
}

type collaborationRepo struct {
	db database.DBTX
}

func NewCollaborationRepository(db *sqlx.DB) CollaborationRepository {
	return &collaborationRepo{db: db}
}

func (r *collaborationRepo) WithTx(tx *sqlx.Tx) CollaborationRepository {
	return &collaborationRepo{db: tx}
}

func (r *collaborationRepo) Create(ctx context.Context, params model.CreateCollaborationParams, now time.Time) (*model.CollaborationRequest, error) {
	var req model.CollaborationRequest
	err := r.db.GetContext(ctx, &req, `
		INSERT INTO collaboration_requests (from_session, to_platform, summary, status, thread_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING *
	`, params.FromSession, params.ToPlatform, params.Summary, model.RequestStatusPending, params.ThreadID, now)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *collaborationRepo) FindByID(ctx context.Context, id int64) (*model.CollaborationRequest, error) {
	var req model.CollaborationRequest
	err := r.db.GetContext(ctx, &req, `SELECT * FROM collaboration_requests WHERE request_id = ?`, id)
	return HandleNotFound(&req, err)
}

func (r *collaborationRepo) Transition(ctx context.Context, id int64, from, to model.RequestStatus, resolvedAt *time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE collaboration_requests SET
			status = ?,
			resolved_at = ?
		WHERE request_id = ? AND status = ?
	`, to, resolvedAt, id, from)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *collaborationRepo) ListByStatus(ctx context.Context, status model.RequestStatus) ([]model.CollaborationRequest, error) {
	var reqs []model.CollaborationRequest
	err := r.db.SelectContext(ctx, &reqs, `
		SELECT * FROM collaboration_requests
		WHERE status = ?
		ORDER BY created_at ASC, request_id ASC
	`, status)
	return reqs, err
}

func (r *collaborationRepo) ListPendingForPlatform(ctx context.Context, platform string) ([]model.CollaborationRequest, error) {
	var reqs []model.CollaborationRequest
	err := r.db.SelectContext(ctx, &reqs, `
		SELECT * FROM collaboration_requests
		WHERE to_platform = ? AND status = ?
		ORDER BY created_at ASC, request_id ASC
	`, platform, model.RequestStatusPending)
	return reqs, err
}

package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/universalchat/hub-go/internal/database"
	"github.com/universalchat/hub-go/internal/model"
)

type ContextRepository interface {
	// Upsert writes the entry, bumping version by one when the key already
	// exists. Last commit wins under concurrent writers; the single UPSERT
	// statement makes the version bump atomic.
	Upsert(ctx context.Context, params model.SetContextParams, now time.Time) (*model.SharedContextEntry, error)
	// FindByKey returns nil without error when the key was never set.
	FindByKey(ctx context.Context, key string) (*model.SharedContextEntry, error)
	List(ctx context.Context) ([]model.SharedContextEntry, error)
}

type contextRepo struct {
	db database.DBTX
}

func NewContextRepository(db *sqlx.DB) ContextRepository {
	return &contextRepo{db: db}
}

func (r *contextRepo) Upsert(ctx context.Context, params model.SetContextParams, now time.Time) (*model.SharedContextEntry, error) {
	var entry model.SharedContextEntry
	err := r.db.GetContext(ctx, &entry, `
		INSERT INTO shared_context (key, value, contributed_by, version, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			contributed_by = excluded.contributed_by,
			version = shared_context.version + 1,
			updated_at = excluded.updated_at
		RETURNING *
	`, params.Key, params.Value, params.ContributedBy, now)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *contextRepo) FindByKey(ctx context.Context, key string) (*model.SharedContextEntry, error) {
	var entry model.SharedContextEntry
	err := r.db.GetContext(ctx, &entry, `SELECT * FROM shared_context WHERE key = ?`, key)
	return HandleNotFound(&entry, err)
}

func (r *contextRepo) List(ctx context.Context) ([]model.SharedContextEntry, error) {
	var entries []model.SharedContextEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM shared_context ORDER BY updated_at DESC
	`)
	return entries, err
}

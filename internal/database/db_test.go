package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/universalchat/hub-go/internal/errors"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func TestOpen(t *testing.T) {
	t.Run("rejects empty path", func(t *testing.T) {
		_, err := Open("")
		assert.Error(t, err)
	})

	t.Run("opens in-memory store", func(t *testing.T) {
		db := openTestDB(t)
		assert.NoError(t, db.Ping(context.Background()))
	})
}

func TestMigrate(t *testing.T) {
	t.Run("is idempotent", func(t *testing.T) {
		db := openTestDB(t)
		assert.NoError(t, db.Migrate(context.Background()))
		assert.NoError(t, db.Migrate(context.Background()))
	})

	t.Run("creates the coordinator tables", func(t *testing.T) {
		db := openTestDB(t)
		var names []string
		err := db.SelectContext(context.Background(), &names,
			`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
		require.NoError(t, err)
		assert.Subset(t, names, []string{
			"sessions", "messages", "shared_context", "collaboration_requests",
			"memory_entries", "doc_chunks",
		})
	})
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db := openTestDB(t)
		err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO sessions (session_id, platform, registered_at, last_seen_at)
				VALUES ('s1', 'claude-code', ?, ?)
			`, time.Now().UTC(), time.Now().UTC())
			return err
		})
		require.NoError(t, err)

		var count int
		require.NoError(t, db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sessions`))
		assert.Equal(t, 1, count)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db := openTestDB(t)
		boom := errors.New("boom")
		err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
			_, execErr := tx.ExecContext(ctx, `
				INSERT INTO sessions (session_id, platform, registered_at, last_seen_at)
				VALUES ('s1', 'claude-code', ?, ?)
			`, time.Now().UTC(), time.Now().UTC())
			require.NoError(t, execErr)
			return boom
		})
		assert.ErrorIs(t, err, boom)

		var count int
		require.NoError(t, db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sessions`))
		assert.Equal(t, 0, count)
	})
}

func TestIsContention(t *testing.T) {
	t.Run("false for plain errors", func(t *testing.T) {
		assert.False(t, IsContention(errors.New("syntax error")))
	})

	t.Run("false for nil", func(t *testing.T) {
		assert.False(t, IsContention(nil))
	})
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("returns nil on success", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, func() error {
			calls++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("does not retry non-contention errors", func(t *testing.T) {
		boom := errors.New("constraint violation")
		calls := 0
		err := Retry(ctx, func() error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
		assert.False(t, apperrors.HasCode(err, apperrors.ErrCodeUnavailable))
	})
}

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/universalchat/hub-go/internal/database"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db.DB
}

// storeTime normalizes a timestamp the way the store hands it back, so
// ordering assertions compare like with like.
func storeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite "modernc.org/sqlite"

	apperrors "github.com/universalchat/hub-go/internal/errors"
)

// DBTX is an interface that both *sqlx.DB and *sqlx.Tx satisfy.
// This allows repositories to work with either a direct connection or a transaction.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Ensure *sqlx.DB and *sqlx.Tx implement DBTX
var _ DBTX = (*sqlx.DB)(nil)
var _ DBTX = (*sqlx.Tx)(nil)

type DB struct {
	*sqlx.DB
}

// Open opens the shared store file. Every agent process opens its own
// connection; SQLite's WAL mode plus busy_timeout is the only cross-process
// coordination. Pass ":memory:" for an in-memory store (tests).
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sqlx.Connect("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	// SQLite serializes writers; a single connection per process avoids
	// intra-process lock churn on top of the cross-process file lock. An
	// in-memory store is per-connection, so it must stay at one regardless.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	return &DB{db}, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Add("_pragma", "foreign_keys(1)")
	if path == ":memory:" {
		return "file::memory:?" + q.Encode()
	}
	return "file:" + path + "?" + q.Encode()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// TxFunc is a function that runs within a transaction.
type TxFunc func(tx *sqlx.Tx) error

// WithTx executes fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
// Otherwise, the transaction is committed.
func (db *DB) WithTx(ctx context.Context, fn TxFunc) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Retry budget for write contention. SQLite allows one writer at a time;
// concurrent agent processes occasionally collide even with busy_timeout.
const (
	retryAttempts    = 5
	retryBaseBackoff = 25 * time.Millisecond
)

// SQLite primary result codes for transient lock contention.
const (
	codeBusy   = 5
	codeLocked = 6
)

// IsContention reports whether err is a transient SQLITE_BUSY/SQLITE_LOCKED
// failure that is safe to retry.
func IsContention(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		code := serr.Code() & 0xff
		return code == codeBusy || code == codeLocked
	}
	return false
}

// Retry runs fn, retrying on store contention with short increasing backoff.
// After the budget is exhausted the last error is surfaced as UNAVAILABLE.
// Non-contention errors are returned immediately.
func Retry(ctx context.Context, fn func() error) error {
	backoff := retryBaseBackoff
	var err error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		err = fn()
		if err == nil || !IsContention(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return apperrors.Unavailable(err)
}

// WithTxRetry is WithTx wrapped in the contention retry budget. The whole
// transaction is re-run on each attempt, so fn must be safe to repeat.
func (db *DB) WithTxRetry(ctx context.Context, fn TxFunc) error {
	return Retry(ctx, func() error {
		return db.WithTx(ctx, fn)
	})
}

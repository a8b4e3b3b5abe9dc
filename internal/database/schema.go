package database

import (
	"context"
	"fmt"
)

// Schema for the four coordinator tables plus the collaborator tables used by
// the memory and docindex packages. Statements are idempotent so any process
// can run Migrate on startup; the first one to commit wins and the rest
// no-op.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		session_id    TEXT PRIMARY KEY,
		platform      TEXT NOT NULL,
		display_name  TEXT NOT NULL DEFAULT '',
		registered_at TIMESTAMP NOT NULL,
		last_seen_at  TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		message_id   INTEGER PRIMARY KEY AUTOINCREMENT,
		sender_id    TEXT NOT NULL,
		recipient_id TEXT NOT NULL,
		kind         TEXT NOT NULL DEFAULT 'chat',
		body         TEXT NOT NULL,
		thread_id    TEXT,
		created_at   TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_recipient ON messages(recipient_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_id)`,
	`CREATE TABLE IF NOT EXISTS shared_context (
		key            TEXT PRIMARY KEY,
		value          TEXT NOT NULL,
		contributed_by TEXT NOT NULL,
		version        INTEGER NOT NULL DEFAULT 1,
		updated_at     TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS collaboration_requests (
		request_id   INTEGER PRIMARY KEY AUTOINCREMENT,
		from_session TEXT NOT NULL,
		to_platform  TEXT NOT NULL,
		summary      TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'pending',
		thread_id    TEXT NOT NULL,
		created_at   TIMESTAMP NOT NULL,
		resolved_at  TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_collab_platform_status ON collaboration_requests(to_platform, status)`,
	`CREATE TABLE IF NOT EXISTS memory_entries (
		key            TEXT PRIMARY KEY,
		content        TEXT NOT NULL,
		contributed_by TEXT NOT NULL,
		platform       TEXT NOT NULL,
		embedding      BLOB NOT NULL,
		updated_at     TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS doc_chunks (
		chunk_id    TEXT PRIMARY KEY,
		source      TEXT NOT NULL,
		platform    TEXT NOT NULL,
		title       TEXT NOT NULL DEFAULT '',
		section     TEXT NOT NULL DEFAULT '',
		chunk_index INTEGER NOT NULL DEFAULT 0,
		content     TEXT NOT NULL,
		indexed_at  TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_doc_chunks_platform ON doc_chunks(platform)`,
}

// Migrate creates any missing tables and indexes.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

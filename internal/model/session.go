package model

import (
	"time"
)

type Session struct {
	SessionID    string    `db:"session_id" json:"sessionId"`
	Platform     string    `db:"platform" json:"platform"`
	DisplayName  string    `db:"display_name" json:"displayName"`
	RegisteredAt time.Time `db:"registered_at" json:"registeredAt"`
	LastSeenAt   time.Time `db:"last_seen_at" json:"lastSeenAt"`
}

type RegisterSessionParams struct {
	SessionID   string
	Platform    string
	DisplayName string
}

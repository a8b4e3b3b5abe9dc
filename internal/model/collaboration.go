package model

import (
	"time"
)

// CollaborationRequest is a structured help request addressed to a platform
// tag rather than a specific session. Status transitions are monotonic:
// pending -> accepted | declined, accepted -> completed.
type CollaborationRequest struct {
	RequestID   int64         `db:"request_id" json:"requestId"`
	FromSession string        `db:"from_session" json:"fromSession"`
	ToPlatform  string        `db:"to_platform" json:"toPlatform"`
	Summary     string        `db:"summary" json:"summary"`
	Status      RequestStatus `db:"status" json:"status"`
	ThreadID    string        `db:"thread_id" json:"threadId"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	ResolvedAt  *time.Time    `db:"resolved_at" json:"resolvedAt,omitempty"`
}

type CreateCollaborationParams struct {
	FromSession string
	ToPlatform  string
	Summary     string
	ThreadID    string
}

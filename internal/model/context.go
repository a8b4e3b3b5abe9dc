package model

import (
	"time"
)

// SharedContextEntry is one named slot in the shared context space. Writes
// are last-writer-wins; version increments on every write so a reader can
// detect that it missed an update.
type SharedContextEntry struct {
	Key           string    `db:"key" json:"key"`
	Value         string    `db:"value" json:"value"`
	ContributedBy string    `db:"contributed_by" json:"contributedBy"`
	Version       int64     `db:"version" json:"version"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

type SetContextParams struct {
	Key           string
	Value         string
	ContributedBy string
}

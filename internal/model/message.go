package model

import (
	"time"
)

type Message struct {
	MessageID   int64       `db:"message_id" json:"messageId"`
	SenderID    string      `db:"sender_id" json:"senderId"`
	RecipientID string      `db:"recipient_id" json:"recipientId"`
	Kind        MessageKind `db:"kind" json:"kind"`
	Body        string      `db:"body" json:"body"`
	ThreadID    *string     `db:"thread_id" json:"threadId,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
}

// IsBroadcast reports whether the message is addressed to every session.
func (m *Message) IsBroadcast() bool {
	return m.RecipientID == BroadcastRecipient
}

type CreateMessageParams struct {
	SenderID    string
	RecipientID string
	Kind        MessageKind
	Body        string
	ThreadID    *string
}

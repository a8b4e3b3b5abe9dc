package model

// BroadcastRecipient is the sentinel recipient id meaning "every session".
// A broadcast is stored as a single row addressed to this sentinel; mailbox
// reads treat it as matching any recipient except the sender.
const BroadcastRecipient = "*"

type MessageKind string

const (
	KindChat          MessageKind = "chat"
	KindBroadcast     MessageKind = "broadcast"
	KindCollabRequest MessageKind = "collab-request"
	KindCollabReply   MessageKind = "collab-response"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusDeclined  RequestStatus = "declined"
	RequestStatusCompleted RequestStatus = "completed"
)

// Terminal reports whether no further transition is allowed from s.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusDeclined || s == RequestStatusCompleted
}

type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionDecline Decision = "decline"
)

// Well-known platform tags. The platform field is an open string tag; these
// constants document the common values without constraining new ones.
const (
	PlatformClaudeCode = "claude-code"
	PlatformCodexCLI   = "codex-cli"
	PlatformGeminiCLI  = "gemini-cli"
	PlatformOllama     = "ollama"
	PlatformCustom     = "custom"
)

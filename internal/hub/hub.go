// Package hub wires the session registry, mailbox, shared context store and
// collaboration tracker into the coordinator's operation surface. Every
// operation is a synchronous call that opens a transaction against the shared
// store, commits, and returns a snapshot; there is no background work and no
// server loop. Any number of agent processes can hold their own Hub over the
// same store file.
package hub

import (
	"context"
	"time"

	"github.com/universalchat/hub-go/internal/database"
	"github.com/universalchat/hub-go/internal/model"
	"github.com/universalchat/hub-go/internal/repository"
	"github.com/universalchat/hub-go/internal/service"
)

type Hub struct {
	db *database.DB

	sessions      *service.SessionService
	messages      *service.MessageService
	context       *service.ContextService
	collaboration *service.CollaborationService
}

// New builds a Hub over an opened, migrated store.
func New(db *database.DB) *Hub {
	sessionRepo := repository.NewSessionRepository(db.DB)
	messageRepo := repository.NewMessageRepository(db.DB)
	contextRepo := repository.NewContextRepository(db.DB)
	collabRepo := repository.NewCollaborationRepository(db.DB)

	return &Hub{
		db:            db,
		sessions:      service.NewSessionService(sessionRepo),
		messages:      service.NewMessageService(db, sessionRepo, messageRepo),
		context:       service.NewContextService(contextRepo),
		collaboration: service.NewCollaborationService(db, collabRepo, messageRepo),
	}
}

// Open opens (and migrates) the store at path and returns a Hub over it.
func Open(ctx context.Context, path string) (*Hub, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return New(db), nil
}

func (h *Hub) Close() error {
	return h.db.Close()
}

func (h *Hub) RegisterSession(ctx context.Context, params service.RegisterParams) (*model.Session, error) {
	return h.sessions.Register(ctx, params)
}

func (h *Hub) ListActiveSessions(ctx context.Context, window time.Duration) ([]model.Session, error) {
	return h.sessions.ListActive(ctx, window)
}

func (h *Hub) ListActiveSessionsByPlatform(ctx context.Context, platform string, window time.Duration) ([]model.Session, error) {
	return h.sessions.ListActiveByPlatform(ctx, platform, window)
}

func (h *Hub) SendMessage(ctx context.Context, params service.SendParams) (*model.Message, error) {
	msg, err := h.messages.Send(ctx, params)
	if err != nil {
		return nil, err
	}
	h.sessions.Touch(ctx, params.SenderID)
	return msg, nil
}

func (h *Hub) BroadcastMessage(ctx context.Context, senderID, body string) (*model.Message, error) {
	msg, err := h.messages.Broadcast(ctx, senderID, body)
	if err != nil {
		return nil, err
	}
	h.sessions.Touch(ctx, senderID)
	return msg, nil
}

func (h *Hub) CheckMessages(ctx context.Context, sessionID string, since *time.Time) ([]model.Message, error) {
	msgs, err := h.messages.Check(ctx, sessionID, since)
	if err != nil {
		return nil, err
	}
	h.sessions.Touch(ctx, sessionID)
	return msgs, nil
}

func (h *Hub) GetConversation(ctx context.Context, a, b string, limit int) ([]model.Message, error) {
	return h.messages.Conversation(ctx, a, b, limit)
}

func (h *Hub) GetThread(ctx context.Context, threadID string) ([]model.Message, error) {
	return h.messages.Thread(ctx, threadID)
}

func (h *Hub) SetSharedContext(ctx context.Context, params model.SetContextParams) (*model.SharedContextEntry, error) {
	entry, err := h.context.Set(ctx, params)
	if err != nil {
		return nil, err
	}
	h.sessions.Touch(ctx, params.ContributedBy)
	return entry, nil
}

func (h *Hub) GetSharedContext(ctx context.Context, key string) (*model.SharedContextEntry, error) {
	return h.context.Get(ctx, key)
}

func (h *Hub) ListSharedContext(ctx context.Context) ([]model.SharedContextEntry, error) {
	return h.context.List(ctx)
}

func (h *Hub) RequestCollaboration(ctx context.Context, fromSession, toPlatform, summary string) (*model.CollaborationRequest, error) {
	req, err := h.collaboration.Request(ctx, fromSession, toPlatform, summary)
	if err != nil {
		return nil, err
	}
	h.sessions.Touch(ctx, fromSession)
	return req, nil
}

func (h *Hub) RespondToCollaboration(ctx context.Context, requestID int64, responderSession string, decision model.Decision) (*model.CollaborationRequest, error) {
	req, err := h.collaboration.Respond(ctx, requestID, responderSession, decision)
	if err != nil {
		return nil, err
	}
	h.sessions.Touch(ctx, responderSession)
	return req, nil
}

func (h *Hub) CompleteCollaboration(ctx context.Context, requestID int64) (*model.CollaborationRequest, error) {
	return h.collaboration.Complete(ctx, requestID)
}

func (h *Hub) PendingCollaborations(ctx context.Context, platform string) ([]model.CollaborationRequest, error) {
	return h.collaboration.PendingForPlatform(ctx, platform)
}

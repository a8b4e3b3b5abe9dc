package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/universalchat/hub-go/internal/database"
	"github.com/universalchat/hub-go/internal/model"
	"github.com/universalchat/hub-go/internal/repository"
	"github.com/universalchat/hub-go/internal/service"
)

// Transactional services run against a real in-memory store; mocking the
// repositories would bypass the guarded updates the tests exist to cover.
type testEnv struct {
	db       *database.DB
	sessions *service.SessionService
	messages *service.MessageService
	collab   *service.CollaborationService
	msgRepo  repository.MessageRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	sessionRepo := repository.NewSessionRepository(db.DB)
	messageRepo := repository.NewMessageRepository(db.DB)
	collabRepo := repository.NewCollaborationRepository(db.DB)

	return &testEnv{
		db:       db,
		sessions: service.NewSessionService(sessionRepo),
		messages: service.NewMessageService(db, sessionRepo, messageRepo),
		collab:   service.NewCollaborationService(db, collabRepo, messageRepo),
		msgRepo:  messageRepo,
	}
}

func (e *testEnv) register(t *testing.T, id, platform string) {
	t.Helper()
	_, err := e.sessions.Register(context.Background(), service.RegisterParams{
		SessionID: &id,
		Platform:  platform,
	})
	require.NoError(t, err)
}

func (e *testEnv) registerDefault(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		e.register(t, id, model.PlatformClaudeCode)
	}
}

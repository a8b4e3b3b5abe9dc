package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/universalchat/hub-go/internal/database"
	apperrors "github.com/universalchat/hub-go/internal/errors"
	"github.com/universalchat/hub-go/internal/model"
	"github.com/universalchat/hub-go/internal/repository"
)

type SendParams struct {
	SenderID    string
	RecipientID string
	Body        string
	Kind        model.MessageKind
	ThreadID    *string
}

type MessageService struct {
	db          *database.DB
	sessionRepo repository.SessionRepository
	messageRepo repository.MessageRepository
}

func NewMessageService(
	db *database.DB,
	sessionRepo repository.SessionRepository,
	messageRepo repository.MessageRepository,
) *MessageService {
	return &MessageService{
		db:          db,
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
	}
}

// Send appends one message. Recipient existence is checked and the row is
// written inside one transaction, so a send never references an id that was
// never registered. The broadcast sentinel is exempt from the check.
func (s *MessageService) Send(ctx context.Context, params SendParams) (*model.Message, error) {
	if strings.TrimSpace(params.SenderID) == "" {
		return nil, apperrors.InvalidArgument("sender_id", "must not be empty")
	}
	if strings.TrimSpace(params.RecipientID) == "" {
		return nil, apperrors.InvalidArgument("recipient_id", "must not be empty")
	}
	if params.Body == "" {
		return nil, apperrors.InvalidArgument("body", "must not be empty")
	}
	if params.Kind == "" {
		params.Kind = model.KindChat
	}

	var msg *model.Message
	err := s.db.WithTxRetry(ctx, func(tx *sqlx.Tx) error {
		if params.RecipientID != model.BroadcastRecipient {
			exists, err := s.sessionRepo.WithTx(tx).Exists(ctx, params.RecipientID)
			if err != nil {
				return fmt.Errorf("check recipient: %w", err)
			}
			if !exists {
				return apperrors.UnknownRecipient(params.RecipientID)
			}
		}
		var createErr error
		msg, createErr = s.messageRepo.WithTx(tx).Create(ctx, model.CreateMessageParams{
			SenderID:    params.SenderID,
			RecipientID: params.RecipientID,
			Kind:        params.Kind,
			Body:        params.Body,
			ThreadID:    params.ThreadID,
		}, time.Now().UTC())
		if createErr != nil {
			return fmt.Errorf("create message: %w", createErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("messageId", msg.MessageID).
		Str("senderId", msg.SenderID).
		Str("recipientId", msg.RecipientID).
		Str("kind", string(msg.Kind)).
		Msg("message sent")

	return msg, nil
}

// Broadcast stores a single row addressed to the broadcast sentinel. Read
// paths fan it out at query time, so the write cost does not grow with the
// number of sessions.
func (s *MessageService) Broadcast(ctx context.Context, senderID, body string) (*model.Message, error) {
	if strings.TrimSpace(senderID) == "" {
		return nil, apperrors.InvalidArgument("sender_id", "must not be empty")
	}
	if body == "" {
		return nil, apperrors.InvalidArgument("body", "must not be empty")
	}

	var msg *model.Message
	err := database.Retry(ctx, func() error {
		var createErr error
		msg, createErr = s.messageRepo.Create(ctx, model.CreateMessageParams{
			SenderID:    senderID,
			RecipientID: model.BroadcastRecipient,
			Kind:        model.KindBroadcast,
			Body:        body,
		}, time.Now().UTC())
		return createErr
	})
	if err != nil {
		return nil, fmt.Errorf("create broadcast: %w", err)
	}

	log.Info().
		Int64("messageId", msg.MessageID).
		Str("senderId", msg.SenderID).
		Msg("broadcast sent")

	return msg, nil
}

// Check returns the session's mailbox view: direct messages plus broadcasts
// from other senders, oldest first. The read is non-destructive; callers keep
// their own since cursor, and repeating a call with the same cursor yields the
// same set.
func (s *MessageService) Check(ctx context.Context, sessionID string, since *time.Time) ([]model.Message, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperrors.InvalidArgument("session_id", "must not be empty")
	}
	msgs, err := s.messageRepo.FindForRecipient(ctx, sessionID, since)
	if err != nil {
		return nil, fmt.Errorf("check messages: %w", err)
	}
	return msgs, nil
}

// Conversation returns the history between two sessions plus broadcasts from
// third parties, oldest first, truncated to the limit most recent.
func (s *MessageService) Conversation(ctx context.Context, a, b string, limit int) ([]model.Message, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return nil, apperrors.InvalidArgument("session_id", "must not be empty")
	}
	if limit <= 0 {
		limit = defaultConversationLimit
	}
	if limit > maxConversationLimit {
		limit = maxConversationLimit
	}

	msgs, err := s.messageRepo.FindConversation(ctx, a, b, limit)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	// Newest-first from the store so LIMIT keeps the most recent rows, then
	// reversed to chronological order for the caller.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Thread returns all messages on one thread, oldest first.
func (s *MessageService) Thread(ctx context.Context, threadID string) ([]model.Message, error) {
	if strings.TrimSpace(threadID) == "" {
		return nil, apperrors.InvalidArgument("thread_id", "must not be empty")
	}
	msgs, err := s.messageRepo.FindByThread(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("get thread: %w", err)
	}
	return msgs, nil
}

const (
	defaultConversationLimit = 50
	maxConversationLimit     = 500
)

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/universalchat/hub-go/internal/database"
	apperrors "github.com/universalchat/hub-go/internal/errors"
	"github.com/universalchat/hub-go/internal/model"
	"github.com/universalchat/hub-go/internal/repository"
)

type CollaborationService struct {
	db          *database.DB
	collabRepo  repository.CollaborationRepository
	messageRepo repository.MessageRepository
}

func NewCollaborationService(
	db *database.DB,
	collabRepo repository.CollaborationRepository,
	messageRepo repository.MessageRepository,
) *CollaborationService {
	return &CollaborationService{
		db:          db,
		collabRepo:  collabRepo,
		messageRepo: messageRepo,
	}
}

// Request creates a pending collaboration request addressed to a platform tag
// and mirrors it as a collab-request message on a fresh thread. The message is
// addressed to the broadcast sentinel so any session of the target platform
// sees it through its normal message checks; the target is resolved at read
// time, never at write time.
func (s *CollaborationService) Request(ctx context.Context, fromSession, toPlatform, summary string) (*model.CollaborationRequest, error) {
	if strings.TrimSpace(fromSession) == "" {
		return nil, apperrors.InvalidArgument("from_session", "must not be empty")
	}
	if strings.TrimSpace(toPlatform) == "" {
		return nil, apperrors.InvalidArgument("to_platform", "must not be empty")
	}
	if strings.TrimSpace(summary) == "" {
		return nil, apperrors.InvalidArgument("summary", "must not be empty")
	}

	threadID := uuid.NewString()

	var req *model.CollaborationRequest
	err := s.db.WithTxRetry(ctx, func(tx *sqlx.Tx) error {
		var createErr error
		req, createErr = s.collabRepo.WithTx(tx).Create(ctx, model.CreateCollaborationParams{
			FromSession: fromSession,
			ToPlatform:  toPlatform,
			Summary:     summary,
			ThreadID:    threadID,
		}, time.Now().UTC())
		if createErr != nil {
			return fmt.Errorf("create collaboration request: %w", createErr)
		}

		body := fmt.Sprintf("collaboration request #%d for %s: %s", req.RequestID, toPlatform, summary)
		_, msgErr := s.messageRepo.WithTx(tx).Create(ctx, model.CreateMessageParams{
			SenderID:    fromSession,
			RecipientID: model.BroadcastRecipient,
			Kind:        model.KindCollabRequest,
			Body:        body,
			ThreadID:    &threadID,
		}, time.Now().UTC())
		if msgErr != nil {
			return fmt.Errorf("announce collaboration request: %w", msgErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("requestId", req.RequestID).
		Str("fromSession", req.FromSession).
		Str("toPlatform", req.ToPlatform).
		Msg("collaboration requested")

	return req, nil
}

// Respond accepts or declines a pending request. The transition is guarded by
// a conditional update, so two concurrent responders cannot both win: the
// loser's update affects zero rows and surfaces INVALID_STATE. A
// collab-response message is appended on the request's thread, addressed to
// the requester.
func (s *CollaborationService) Respond(ctx context.Context, requestID int64, responderSession string, decision model.Decision) (*model.CollaborationRequest, error) {
	if strings.TrimSpace(responderSession) == "" {
		return nil, apperrors.InvalidArgument("responder_session", "must not be empty")
	}
	var target model.RequestStatus
	switch decision {
	case model.DecisionAccept:
		target = model.RequestStatusAccepted
	case model.DecisionDecline:
		target = model.RequestStatusDeclined
	default:
		return nil, apperrors.InvalidArgument("decision", "must be accept or decline")
	}

	var updated *model.CollaborationRequest
	err := s.db.WithTxRetry(ctx, func(tx *sqlx.Tx) error {
		collabRepo := s.collabRepo.WithTx(tx)

		req, err := collabRepo.FindByID(ctx, requestID)
		if err != nil {
			return fmt.Errorf("find collaboration request: %w", err)
		}
		if req == nil {
			return apperrors.NotFound(fmt.Sprintf("Collaboration request %d", requestID))
		}

		var resolvedAt *time.Time
		if target == model.RequestStatusDeclined {
			now := time.Now().UTC()
			resolvedAt = &now
		}
		ok, err := collabRepo.Transition(ctx, requestID, model.RequestStatusPending, target, resolvedAt)
		if err != nil {
			return fmt.Errorf("transition collaboration request: %w", err)
		}
		if !ok {
			return apperrors.InvalidState(fmt.Sprintf("request %d is %s, not pending", requestID, req.Status))
		}

		body := fmt.Sprintf("collaboration request #%d %s by %s", requestID, target, responderSession)
		_, msgErr := s.messageRepo.WithTx(tx).Create(ctx, model.CreateMessageParams{
			SenderID:    responderSession,
			RecipientID: req.FromSession,
			Kind:        model.KindCollabReply,
			Body:        body,
			ThreadID:    &req.ThreadID,
		}, time.Now().UTC())
		if msgErr != nil {
			return fmt.Errorf("append collaboration response: %w", msgErr)
		}

		updated, err = collabRepo.FindByID(ctx, requestID)
		if err != nil {
			return fmt.Errorf("reload collaboration request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("requestId", updated.RequestID).
		Str("status", string(updated.Status)).
		Str("responder", responderSession).
		Msg("collaboration request resolved")

	return updated, nil
}

// Complete moves an accepted request to its terminal completed state. Any
// other current status is rejected with INVALID_STATE.
func (s *CollaborationService) Complete(ctx context.Context, requestID int64) (*model.CollaborationRequest, error) {
	var updated *model.CollaborationRequest
	err := s.db.WithTxRetry(ctx, func(tx *sqlx.Tx) error {
		collabRepo := s.collabRepo.WithTx(tx)

		req, err := collabRepo.FindByID(ctx, requestID)
		if err != nil {
			return fmt.Errorf("find collaboration request: %w", err)
		}
		if req == nil {
			return apperrors.NotFound(fmt.Sprintf("Collaboration request %d", requestID))
		}

		now := time.Now().UTC()
		ok, err := collabRepo.Transition(ctx, requestID, model.RequestStatusAccepted, model.RequestStatusCompleted, &now)
		if err != nil {
			return fmt.Errorf("transition collaboration request: %w", err)
		}
		if !ok {
			return apperrors.InvalidState(fmt.Sprintf("request %d is %s, not accepted", requestID, req.Status))
		}

		updated, err = collabRepo.FindByID(ctx, requestID)
		if err != nil {
			return fmt.Errorf("reload collaboration request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("requestId", updated.RequestID).Msg("collaboration request completed")
	return updated, nil
}

// PendingForPlatform lists requests still awaiting a session of the platform.
// A request with no live target platform session stays pending indefinitely.
func (s *CollaborationService) PendingForPlatform(ctx context.Context, platform string) ([]model.CollaborationRequest, error) {
	if strings.TrimSpace(platform) == "" {
		return nil, apperrors.InvalidArgument("platform", "must not be empty")
	}
	reqs, err := s.collabRepo.ListPendingForPlatform(ctx, platform)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return reqs, nil
}

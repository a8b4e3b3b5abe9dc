package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/universalchat/hub-go/internal/database"
	apperrors "github.com/universalchat/hub-go/internal/errors"
	"github.com/universalchat/hub-go/internal/model"
	"github.com/universalchat/hub-go/internal/repository"
)

// RegisterParams carries register_session inputs. A nil SessionID means
// "generate one"; a present-but-empty id is rejected as malformed.
type RegisterParams struct {
	SessionID   *string
	Platform    string
	DisplayName string
}

type SessionService struct {
	sessionRepo repository.SessionRepository
}

func NewSessionService(sessionRepo repository.SessionRepository) *SessionService {
	return &SessionService{sessionRepo: sessionRepo}
}

// Register upserts the session identity. Platform is an open tag: unknown
// values are accepted as-is so new agent platforms never break registration.
func (s *SessionService) Register(ctx context.Context, params RegisterParams) (*model.Session, error) {
	platform := strings.TrimSpace(params.Platform)
	if platform == "" {
		return nil, apperrors.InvalidArgument("platform", "must not be empty")
	}

	var sessionID string
	if params.SessionID == nil {
		sessionID = uuid.NewString()
	} else {
		sessionID = strings.TrimSpace(*params.SessionID)
		if sessionID == "" {
			return nil, apperrors.InvalidArgument("session_id", "must not be empty")
		}
	}
	if sessionID == model.BroadcastRecipient {
		return nil, apperrors.InvalidArgument("session_id", "reserved for broadcast addressing")
	}

	displayName := strings.TrimSpace(params.DisplayName)
	if displayName == "" {
		displayName = defaultDisplayName(platform, sessionID)
	}

	var session *model.Session
	err := database.Retry(ctx, func() error {
		var upsertErr error
		session, upsertErr = s.sessionRepo.Upsert(ctx, model.RegisterSessionParams{
			SessionID:   sessionID,
			Platform:    platform,
			DisplayName: displayName,
		}, time.Now().UTC())
		return upsertErr
	})
	if err != nil {
		return nil, fmt.Errorf("register session: %w", err)
	}

	log.Info().
		Str("sessionId", session.SessionID).
		Str("platform", session.Platform).
		Str("displayName", session.DisplayName).
		Msg("session registered")

	return session, nil
}

// ListActive returns sessions seen within the freshness window, most recent
// first. Staleness is purely a read-time filter; nothing is evicted.
func (s *SessionService) ListActive(ctx context.Context, window time.Duration) ([]model.Session, error) {
	if window <= 0 {
		return nil, apperrors.InvalidArgument("freshness_window", "must be positive")
	}
	cutoff := time.Now().UTC().Add(-window)
	sessions, err := s.sessionRepo.ListActive(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}
	return sessions, nil
}

// ListActiveByPlatform is ListActive narrowed to one platform tag.
func (s *SessionService) ListActiveByPlatform(ctx context.Context, platform string, window time.Duration) ([]model.Session, error) {
	if window <= 0 {
		return nil, apperrors.InvalidArgument("freshness_window", "must be positive")
	}
	if strings.TrimSpace(platform) == "" {
		return nil, apperrors.InvalidArgument("platform", "must not be empty")
	}
	cutoff := time.Now().UTC().Add(-window)
	sessions, err := s.sessionRepo.ListActiveByPlatform(ctx, platform, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list active sessions by platform: %w", err)
	}
	return sessions, nil
}

// Touch bumps last_seen_at for the session. Touching an unregistered id is a
// no-op; every registered session's liveness follows its operations.
func (s *SessionService) Touch(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := s.sessionRepo.Touch(ctx, sessionID, time.Now().UTC()); err != nil {
		log.Warn().Err(err).Str("sessionId", sessionID).Msg("failed to update last_seen_at")
	}
}

func defaultDisplayName(platform, sessionID string) string {
	short := sessionID
	if len(short) > 6 {
		short = short[:6]
	}
	return fmt.Sprintf("%s-%s", platform, short)
}

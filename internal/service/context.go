package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/universalchat/hub-go/internal/database"
	apperrors "github.com/universalchat/hub-go/internal/errors"
	"github.com/universalchat/hub-go/internal/model"
	"github.com/universalchat/hub-go/internal/repository"
)

type ContextService struct {
	contextRepo repository.ContextRepository
}

func NewContextService(contextRepo repository.ContextRepository) *ContextService {
	return &ContextService{contextRepo: contextRepo}
}

// Set upserts one shared context entry. Concurrent writers to the same key
// race and the last commit wins, but every write bumps version and records
// the contributor, so no write is silently lost.
func (s *ContextService) Set(ctx context.Context, params model.SetContextParams) (*model.SharedContextEntry, error) {
	if strings.TrimSpace(params.Key) == "" {
		return nil, apperrors.InvalidArgument("key", "must not be empty")
	}
	if strings.TrimSpace(params.ContributedBy) == "" {
		return nil, apperrors.InvalidArgument("contributor_session_id", "must not be empty")
	}

	var entry *model.SharedContextEntry
	err := database.Retry(ctx, func() error {
		var upsertErr error
		entry, upsertErr = s.contextRepo.Upsert(ctx, params, time.Now().UTC())
		return upsertErr
	})
	if err != nil {
		return nil, fmt.Errorf("set shared context: %w", err)
	}

	log.Info().
		Str("key", entry.Key).
		Str("contributedBy", entry.ContributedBy).
		Int64("version", entry.Version).
		Msg("shared context updated")

	return entry, nil
}

// Get returns the latest value with its attribution. A never-set key yields
// NOT_FOUND, which is a normal outcome and is not logged as an error.
func (s *ContextService) Get(ctx context.Context, key string) (*model.SharedContextEntry, error) {
	if strings.TrimSpace(key) == "" {
		return nil, apperrors.InvalidArgument("key", "must not be empty")
	}
	entry, err := s.contextRepo.FindByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get shared context: %w", err)
	}
	if entry == nil {
		return nil, apperrors.NotFound(fmt.Sprintf("Shared context key %q", key))
	}
	return entry, nil
}

// List enumerates all entries for discovery, most recently updated first.
func (s *ContextService) List(ctx context.Context) ([]model.SharedContextEntry, error) {
	entries, err := s.contextRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shared context: %w", err)
	}
	return entries, nil
}

package service_test

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/universalchat/hub-go/internal/model"
	"github.com/universalchat/hub-go/internal/repository"
)

type mockSessionRepo struct {
	mock.Mock
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *mockSessionRepo) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessionRepo) Upsert(ctx context.Context, params model.RegisterSessionParams, now time.Time) (*model.Session, error) {
	args := m.Called(ctx, params, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *mockSessionRepo) ListActive(ctx context.Context, cutoff time.Time) ([]model.Session, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Session), args.Error(1)
}

func (m *mockSessionRepo) ListActiveByPlatform(ctx context.Context, platform string, cutoff time.Time) ([]model.Session, error) {
	args := m.Called(ctx, platform, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Session), args.Error(1)
}

func (m *mockSessionRepo) Touch(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockSessionRepo) WithTx(tx *sqlx.Tx) repository.SessionRepository {
	return m
}

type mockContextRepo struct {
	mock.Mock
}

func (m *mockContextRepo) Upsert(ctx context.Context, params model.SetContextParams, now time.Time) (*model.SharedContextEntry, error) {
	args := m.Called(ctx, params, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SharedContextEntry), args.Error(1)
}

func (m *mockContextRepo) FindByKey(ctx context.Context, key string) (*model.SharedContextEntry, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SharedContextEntry), args.Error(1)
}

func (m *mockContextRepo) List(ctx context.Context) ([]model.SharedContextEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SharedContextEntry), args.Error(1)
}

//go:build !integration

package postgres

import (
	"context"
	"time"


	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/repository"
)

// mockInnerGroupRepo mocks the database repository that the group cache wraps.
type mockInnerGroupRepo struct {
	UpsertFunc func(ctx context.Context, tx repository.Tx, g *model.Group) error
	DeleteFunc func(ctx context.Context, tx repository.Tx, chatID int64) (bool, error)
	ListFunc   func(ctx context.Context, tx repository.Tx) ([]*model.Group, error)
	CountFunc  func(ctx context.Context, tx repository.Tx) (int, error)
}

func (m *mockInnerGroupRepo) Upsert(ctx context.Context, tx repository.Tx, g *model.Group) error {
	return m.UpsertFunc(ctx, tx, g)
}
func (m *mockInnerGroupRepo) Delete(ctx context.Context, tx repository.Tx, chatID int64) (bool, error) {
	return m.DeleteFunc(ctx, tx, chatID)
}
func (m *mockInnerGroupRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Group, error) {
	return m.ListFunc(ctx, tx)
}
func (m *mockInnerGroupRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	return m.CountFunc(ctx, tx)
}

// mockListCache implements ListCache. Unset functions behave like an empty cache.
type mockListCache struct {
	GetFunc    func(ctx context.Context, key string) ([]byte, bool, error)
	PutFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, keys ...string) error
}

func (m *mockListCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return nil, false, nil
}
func (m *mockListCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, value, ttl)
	}
	return nil
}
func (m *mockListCache) Delete(ctx context.Context, keys ...string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, keys...)
	}
	return nil
}

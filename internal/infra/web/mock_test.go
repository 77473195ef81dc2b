//go:build !integration

package web

import (
	"context"

	"github.com/rs/zerolog"

	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/adapter"
	"promo-bot/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type mockStatsUC struct {
	TotalsFunc func(ctx context.Context) (usecase.Totals, error)
}

func (m *mockStatsUC) Totals(ctx context.Context) (usecase.Totals, error) {
	return m.TotalsFunc(ctx)
}

type mockGroupUC struct {
	ListFunc func(ctx context.Context) ([]*model.Group, error)
}

func (m *mockGroupUC) RegisterFromChat(ctx context.Context, chat adapter.ChatInfo, registeredBy int64) (*model.Group, error) {
	return nil, nil
}

func (m *mockGroupUC) AddByID(ctx context.Context, chatID, registeredBy int64) (*model.Group, error) {
	return nil, nil
}

func (m *mockGroupUC) Remove(ctx context.Context, chatID int64) (bool, error) { return false, nil }

func (m *mockGroupUC) List(ctx context.Context) ([]*model.Group, error) { return m.ListFunc(ctx) }

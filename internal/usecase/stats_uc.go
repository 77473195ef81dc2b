package usecase

import (
	"context"

	"promo-bot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// Totals is the snapshot shown by /stats and the admin API.
type Totals struct {
	Users       int `json:"users"`
	ActiveUsers int `json:"active_users"`
	Groups      int `json:"groups"`
}

type StatsUseCase interface {
	Totals(ctx context.Context) (Totals, error)
}

type statsUC struct {
	users  repository.UserRepository
	groups repository.GroupRepository

	log *zerolog.Logger
}

func NewStatsUseCase(users repository.UserRepository, groups repository.GroupRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{users: users, groups: groups, log: logger}
}

func (s *statsUC) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	var err error
	if t.Users, err = s.users.CountUsers(ctx, repository.NoTX); err != nil {
		return Totals{}, err
	}
	if t.ActiveUsers, err = s.users.CountActiveUsers(ctx, repository.NoTX); err != nil {
		return Totals{}, err
	}
	if t.Groups, err = s.groups.Count(ctx, repository.NoTX); err != nil {
		return Totals{}, err
	}
	return t, nil
}

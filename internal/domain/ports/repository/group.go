package repository

import (
	"context"

	"promo-bot/internal/domain/model"
)

// -----------------------------
// Groups & selections
// -----------------------------

type GroupRepository interface {
	Upsert(ctx context.Context, tx Tx, g *model.Group) error
	Delete(ctx context.Context, tx Tx, chatID int64) (bool, error)
	// List returns all groups ordered by title.
	List(ctx context.Context, tx Tx) ([]*model.Group, error)
	Count(ctx context.Context, tx Tx) (int, error)
}

type SelectionRepository interface {
	// Get returns an empty selection when none is stored.
	Get(ctx context.Context, tx Tx, userID int64) (*model.Selection, error)
	// Save replaces the stored set.
	Save(ctx context.Context, tx Tx, s *model.Selection) error
}

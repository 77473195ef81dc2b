package repository

import (
	"context"

	"promo-bot/internal/domain/model"
)

// -----------------------------
// Materials
// -----------------------------

type MaterialRepository interface {
	// Save inserts m and fills m.ID.
	Save(ctx context.Context, tx Tx, m *model.Material) error
	// ListByUser returns the user's materials newest first.
	ListByUser(ctx context.Context, tx Tx, userID int64) ([]*model.Material, error)
	FindByID(ctx context.Context, tx Tx, userID, id int64) (*model.Material, error)
	// Delete removes one material of the user, or all of them when id is nil.
	Delete(ctx context.Context, tx Tx, userID int64, id *int64) (int64, error)
	CountByUser(ctx context.Context, tx Tx, userID int64) (int, error)
}

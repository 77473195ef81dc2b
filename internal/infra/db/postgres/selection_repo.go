package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/repository"
)

var _ repository.SelectionRepository = (*SelectionRepo)(nil)

type SelectionRepo struct {
	pool *pgxpool.Pool
}

func NewSelectionRepo(pool *pgxpool.Pool) *SelectionRepo {
	return &SelectionRepo{pool: pool}
}

func (r *SelectionRepo) Get(ctx context.Context, tx repository.Tx, userID int64) (*model.Selection, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var ids []int64
	err = ex.QueryRow(ctx, `SELECT group_ids FROM selections WHERE user_id=$1;`, userID).Scan(&ids)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NewSelection(userID), nil
		}
		return nil, fmt.Errorf("get selection: %w", err)
	}
	return model.NewSelection(userID, ids...), nil
}

func (r *SelectionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Selection) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO selections (user_id, group_ids) VALUES ($1,$2)
ON CONFLICT (user_id) DO UPDATE SET group_ids=EXCLUDED.group_ids;`
	if _, err := ex.Exec(ctx, q, s.UserID, s.GroupIDs()); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	return nil
}

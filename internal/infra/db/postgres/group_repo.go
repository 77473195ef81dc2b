package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/repository"
)

var _ repository.GroupRepository = (*GroupRepo)(nil)

type GroupRepo struct {
	pool *pgxpool.Pool
}

func NewGroupRepo(pool *pgxpool.Pool) *GroupRepo {
	return &GroupRepo{pool: pool}
}

func (r *GroupRepo) Upsert(ctx context.Context, tx repository.Tx, g *model.Group) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO groups (chat_id, title, registered_by, registered_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (chat_id) DO UPDATE SET
  title=EXCLUDED.title, registered_by=EXCLUDED.registered_by, registered_at=EXCLUDED.registered_at;`
	if _, err := ex.Exec(ctx, q, g.ChatID, g.Title, g.RegisteredBy, g.RegisteredAt); err != nil {
		return fmt.Errorf("upsert group: %w", err)
	}
	return nil
}

func (r *GroupRepo) Delete(ctx context.Context, tx repository.Tx, chatID int64) (bool, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	tag, err := ex.Exec(ctx, `DELETE FROM groups WHERE chat_id=$1;`, chatID)
	if err != nil {
		return false, fmt.Errorf("delete group: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *GroupRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Group, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `
SELECT chat_id, title, registered_by, registered_at
  FROM groups
 ORDER BY title, chat_id;`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var out []*model.Group
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ChatID, &g.Title, &g.RegisteredBy, &g.RegisteredAt); err != nil {
			return nil, err
		}
		out = append(out, &g)
	}
	return out, rows.Err()
}

func (r *GroupRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM groups;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count groups: %w", err)
	}
	return n, nil
}

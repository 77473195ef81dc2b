package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"promo-bot/internal/domain"
	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

type MaterialRepo struct {
	pool *pgxpool.Pool
}

func NewMaterialRepo(pool *pgxpool.Pool) *MaterialRepo {
	return &MaterialRepo{pool: pool}
}

func (r *MaterialRepo) Save(ctx context.Context, tx repository.Tx, m *model.Material) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `INSERT INTO materials (user_id, text, created_at) VALUES ($1,$2,$3) RETURNING id;`
	if err := ex.QueryRow(ctx, q, m.UserID, m.Text, m.CreatedAt).Scan(&m.ID); err != nil {
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

func (r *MaterialRepo) ListByUser(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Material, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `
SELECT id, user_id, text, created_at
  FROM materials WHERE user_id=$1
 ORDER BY id DESC;`, userID)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var out []*model.Material
	for rows.Next() {
		var m model.Material
		if err := rows.Scan(&m.ID, &m.UserID, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *MaterialRepo) FindByID(ctx context.Context, tx repository.Tx, userID, id int64) (*model.Material, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var m model.Material
	err = ex.QueryRow(ctx, `SELECT id, user_id, text, created_at FROM materials WHERE id=$1 AND user_id=$2;`, id, userID).
		Scan(&m.ID, &m.UserID, &m.Text, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find material: %w", err)
	}
	return &m, nil
}

func (r *MaterialRepo) Delete(ctx context.Context, tx repository.Tx, userID int64, id *int64) (int64, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	q, args := `DELETE FROM materials WHERE user_id=$1;`, []interface{}{userID}
	if id != nil {
		q, args = `DELETE FROM materials WHERE user_id=$1 AND id=$2;`, []interface{}{userID, *id}
	}
	tag, err := ex.Exec(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("delete materials: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *MaterialRepo) CountByUser(ctx context.Context, tx repository.Tx, userID int64) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM materials WHERE user_id=$1;`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count materials: %w", err)
	}
	return n, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"promo-bot/internal/domain"
	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, username, first_name, joined_at, active, plan, plan_expiry, wallet, referred_by`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.JoinedAt, &u.Active, &u.Plan, &u.PlanExpiry, &u.Wallet, &u.ReferredBy); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) CreateIfAbsent(ctx context.Context, tx repository.Tx, u *model.User) (bool, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	const q = `
INSERT INTO users (` + userColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO NOTHING;`
	tag, err := ex.Exec(ctx, q, u.ID, u.Username, u.FirstName, u.JoinedAt, u.Active, u.Plan, u.PlanExpiry, u.Wallet, u.ReferredBy)
	if err != nil {
		return false, fmt.Errorf("insert user: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.User, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(ex.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) Activate(ctx context.Context, tx repository.Tx, id int64, plan string, expiry time.Time) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `UPDATE users SET active=TRUE, plan=$2, plan_expiry=$3 WHERE id=$1;`, id, plan, expiry)
	if err != nil {
		return fmt.Errorf("activate user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) AddToWallet(ctx context.Context, tx repository.Tx, id int64, delta int64) (bool, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	tag, err := ex.Exec(ctx, `UPDATE users SET wallet = wallet + $2 WHERE id=$1;`, id, delta)
	if err != nil {
		return false, fmt.Errorf("add to wallet: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	return r.count(ctx, tx, `SELECT COUNT(*) FROM users;`)
}

func (r *UserRepo) CountActiveUsers(ctx context.Context, tx repository.Tx) (int, error) {
	return r.count(ctx, tx, `SELECT COUNT(*) FROM users WHERE active;`)
}

func (r *UserRepo) count(ctx context.Context, tx repository.Tx, q string) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *UserRepo) ListExpiredActive(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.User, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `
SELECT `+userColumns+`
  FROM users
 WHERE active AND plan_expiry IS NOT NULL AND plan_expiry < $1
 ORDER BY plan_expiry;`, now)
	if err != nil {
		return nil, fmt.Errorf("list expired: %w", err)
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

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

var _ repository.ReferralRepository = (*ReferralRepo)(nil)

type ReferralRepo struct {
	pool *pgxpool.Pool
}

func NewReferralRepo(pool *pgxpool.Pool) *ReferralRepo {
	return &ReferralRepo{pool: pool}
}

func (r *ReferralRepo) Create(ctx context.Context, tx repository.Tx, ref *model.Referral) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO referrals (new_user_id, referrer_id, credited, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (new_user_id) DO NOTHING;`
	if _, err := ex.Exec(ctx, q, ref.NewUserID, ref.ReferrerID, ref.Credited, ref.CreatedAt); err != nil {
		return fmt.Errorf("insert referral: %w", err)
	}
	return nil
}

func (r *ReferralRepo) FindByNewUserForUpdate(ctx context.Context, tx repository.Tx, newUserID int64) (*model.Referral, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	q := `SELECT new_user_id, referrer_id, credited, created_at FROM referrals WHERE new_user_id=$1`
	if isTx(tx) {
		q += ` FOR UPDATE`
	}
	var ref model.Referral
	if err := ex.QueryRow(ctx, q, newUserID).Scan(&ref.NewUserID, &ref.ReferrerID, &ref.Credited, &ref.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find referral: %w", err)
	}
	return &ref, nil
}

func (r *ReferralRepo) MarkCredited(ctx context.Context, tx repository.Tx, newUserID int64) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `UPDATE referrals SET credited=TRUE WHERE new_user_id=$1;`, newUserID)
	if err != nil {
		return fmt.Errorf("mark credited: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReferralRepo) StatsByReferrer(ctx context.Context, tx repository.Tx, referrerID int64) (model.ReferralStats, error) {
	var st model.ReferralStats
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return st, err
	}
	const q = `
SELECT COUNT(*), COUNT(*) FILTER (WHERE credited)
  FROM referrals WHERE referrer_id=$1;`
	if err := ex.QueryRow(ctx, q, referrerID).Scan(&st.Total, &st.Credited); err != nil {
		return st, fmt.Errorf("referral stats: %w", err)
	}
	return st, nil
}

package repository

import (
	"context"
	"time"

	"promo-bot/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	// CreateIfAbsent inserts u unless a user with the same ID exists.
	// It reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, tx Tx, u *model.User) (bool, error)
	FindByID(ctx context.Context, tx Tx, id int64) (*model.User, error)
	// Activate sets active, plan and expiry together.
	Activate(ctx context.Context, tx Tx, id int64, plan string, expiry time.Time) error
	// AddToWallet returns false without error when the user does not exist.
	AddToWallet(ctx context.Context, tx Tx, id int64, delta int64) (bool, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
	CountActiveUsers(ctx context.Context, tx Tx) (int, error)
	// ListExpiredActive lists users still flagged active whose plan expired before now.
	ListExpiredActive(ctx context.Context, tx Tx, now time.Time) ([]*model.User, error)
}

// -----------------------------
// Referrals
// -----------------------------

type ReferralRepository interface {
	// Create inserts an uncredited referral; it is a no-op if one already exists for the new user.
	Create(ctx context.Context, tx Tx, r *model.Referral) error
	// FindByNewUserForUpdate locks the row when tx is a transaction.
	FindByNewUserForUpdate(ctx context.Context, tx Tx, newUserID int64) (*model.Referral, error)
	MarkCredited(ctx context.Context, tx Tx, newUserID int64) error
	StatsByReferrer(ctx context.Context, tx Tx, referrerID int64) (model.ReferralStats, error)
}

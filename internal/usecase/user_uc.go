package usecase

import (
	"context"
	"fmt"
	"time"

	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/repository"
	"promo-bot/internal/infra/logging"
	"promo-bot/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes user-related operations used by bot and admin flows.
type UserUseCase interface {
	// RegisterOrFetch creates the user on first contact and records the referral
	// carried by startParam. Existing users are returned unchanged.
	RegisterOrFetch(ctx context.Context, tgID int64, username, firstName, startParam string) (*model.User, error)
	Get(ctx context.Context, tgID int64) (*model.User, error)
	// Activate sets the plan and its expiry counted from now (UTC).
	Activate(ctx context.Context, tgID int64, planCode string) (model.Plan, time.Time, error)
}

type userUC struct {
	users     repository.UserRepository
	referrals repository.ReferralRepository
	tm        repository.TransactionManager
	log       *zerolog.Logger
	now       func() time.Time
}

func NewUserUseCase(users repository.UserRepository, referrals repository.ReferralRepository, tm repository.TransactionManager, logger *zerolog.Logger) *userUC {
	l := logger.With().Str("component", "UserUC").Logger()
	return &userUC{
		users:     users,
		referrals: referrals,
		tm:        tm,
		log:       &l,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (u *userUC) RegisterOrFetch(ctx context.Context, tgID int64, username, firstName, startParam string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.RegisterOrFetch")()

	nu, err := model.NewUser(tgID, username, firstName)
	if err != nil {
		return nil, err
	}
	if startParam != "" {
		referrerID, err := model.ParseReferralCode(startParam)
		switch {
		case err != nil:
			u.log.Debug().Int64("tg_id", tgID).Str("start_param", startParam).Msg("ignoring start parameter")
		case referrerID == tgID:
			u.log.Debug().Int64("tg_id", tgID).Msg("ignoring self-referral")
		default:
			nu.ReferredBy = &referrerID
		}
	}

	var user *model.User
	var created bool
	err = u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		var txErr error
		created, txErr = u.users.CreateIfAbsent(ctx, tx, nu)
		if txErr != nil {
			return txErr
		}
		if created && nu.ReferredBy != nil {
			ref := &model.Referral{NewUserID: tgID, ReferrerID: *nu.ReferredBy, CreatedAt: nu.JoinedAt}
			if err := u.referrals.Create(ctx, tx, ref); err != nil {
				return err
			}
		}
		user, txErr = u.users.FindByID(ctx, tx, tgID)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("register user %d: %w", tgID, err)
	}

	if created {
		metrics.IncUsersRegistered()
		ev := u.log.Info().Int64("tg_id", tgID)
		if nu.ReferredBy != nil {
			ev = ev.Int64("referred_by", *nu.ReferredBy)
		}
		ev.Msg("user registered")
	}
	return user, nil
}

func (u *userUC) Get(ctx context.Context, tgID int64) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Get")()
	return u.users.FindByID(ctx, repository.NoTX, tgID)
}

func (u *userUC) Activate(ctx context.Context, tgID int64, planCode string) (model.Plan, time.Time, error) {
	defer logging.TraceDuration(u.log, "UserUC.Activate")()

	plan, err := model.PlanByCode(planCode)
	if err != nil {
		return model.Plan{}, time.Time{}, err
	}
	expiry := plan.ExpiryFrom(u.now()).Truncate(time.Second)
	if err := u.users.Activate(ctx, repository.NoTX, tgID, plan.Code, expiry); err != nil {
		u.log.Warn().Err(err).Int64("tg_id", tgID).Str("plan", plan.Code).Msg("activation failed")
		return model.Plan{}, time.Time{}, fmt.Errorf("activate user %d: %w", tgID, err)
	}
	u.log.Info().Int64("tg_id", tgID).Str("plan", plan.Code).Time("expiry", expiry).Msg("user activated")
	return plan, expiry, nil
}

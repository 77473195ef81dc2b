package usecase

import (
	"context"
	"errors"
	"fmt"

	"promo-bot/internal/domain"
	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/adapter"
	"promo-bot/internal/domain/ports/repository"
	"promo-bot/internal/infra/i18n"
	"promo-bot/internal/infra/logging"
	"promo-bot/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

var _ ReferralUseCase = (*referralUC)(nil)

type ReferralUseCase interface {
	// CreditIfPending credits the referrer of newUserID once. It reports whether
	// a credit happened on this call.
	CreditIfPending(ctx context.Context, newUserID int64) (bool, error)
	Stats(ctx context.Context, referrerID int64) (model.ReferralStats, error)
	// Link builds the t.me deep link that carries the user's referral code.
	Link(botUsername string, userID int64) string
}

type referralUC struct {
	users      repository.UserRepository
	referrals  repository.ReferralRepository
	tm         repository.TransactionManager
	bot        adapter.TelegramBotAdapter
	translator *i18n.Translator
	log        *zerolog.Logger
}

func NewReferralUseCase(
	users repository.UserRepository,
	referrals repository.ReferralRepository,
	tm repository.TransactionManager,
	bot adapter.TelegramBotAdapter,
	translator *i18n.Translator,
	logger *zerolog.Logger,
) *referralUC {
	l := logger.With().Str("component", "ReferralUC").Logger()
	return &referralUC{users: users, referrals: referrals, tm: tm, bot: bot, translator: translator, log: &l}
}

func (r *referralUC) CreditIfPending(ctx context.Context, newUserID int64) (bool, error) {
	defer logging.TraceDuration(r.log, "ReferralUC.CreditIfPending")()

	var referrerID int64
	var credited, walletUpdated bool
	err := r.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		ref, err := r.referrals.FindByNewUserForUpdate(ctx, tx, newUserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		}
		if ref.Credited {
			return nil
		}
		referrerID = ref.ReferrerID
		walletUpdated, err = r.users.AddToWallet(ctx, tx, ref.ReferrerID, model.ReferralBonus)
		if err != nil {
			return err
		}
		// The referral is closed even when the referrer is unknown, so it is never retried.
		if err := r.referrals.MarkCredited(ctx, tx, newUserID); err != nil {
			return err
		}
		credited = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("credit referral for %d: %w", newUserID, err)
	}
	if !credited {
		return false, nil
	}
	if !walletUpdated {
		r.log.Warn().Int64("new_user", newUserID).Int64("referrer", referrerID).Msg("referrer not found; referral closed without credit")
		return false, nil
	}

	metrics.IncReferralCredited()
	r.log.Info().Int64("new_user", newUserID).Int64("referrer", referrerID).Msg("referral credited")

	// Best effort: the credit is already committed.
	if err := r.bot.SendMessage(ctx, adapter.SendMessageParams{
		ChatID:    referrerID,
		Text:      r.translator.T("referral_credited", model.ReferralBonus),
		ParseMode: adapter.ParseModeHTML,
	}); err != nil {
		r.log.Info().Err(err).Int64("referrer", referrerID).Msg("could not notify referrer")
	}
	return true, nil
}

func (r *referralUC) Stats(ctx context.Context, referrerID int64) (model.ReferralStats, error) {
	defer logging.TraceDuration(r.log, "ReferralUC.Stats")()
	return r.referrals.StatsByReferrer(ctx, repository.NoTX, referrerID)
}

func (r *referralUC) Link(botUsername string, userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, model.ReferralCode(userID))
}

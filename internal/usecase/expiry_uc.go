package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"promo-bot/internal/domain"
	"promo-bot/internal/domain/ports/adapter"
	"promo-bot/internal/domain/ports/repository"
	"promo-bot/internal/infra/i18n"
	"promo-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

// maxReportLines caps one report message well under Telegram's 4096-char limit.
const maxReportLines = 40

// Locker serialises jobs across replicas.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, error)
	Unlock(ctx context.Context, key, token string) error
}

var _ ExpiryReportUseCase = (*expiryReportUC)(nil)

// ExpiryReportUseCase tells administrators which users are still active past their
// plan expiry. It never deactivates anyone.
type ExpiryReportUseCase interface {
	Report(ctx context.Context, now time.Time) (int, error)
}

type expiryReportUC struct {
	users      repository.UserRepository
	bot        adapter.TelegramBotAdapter
	locker     Locker
	translator *i18n.Translator
	adminIDs   []int64
	log        *zerolog.Logger
}

func NewExpiryReportUseCase(
	users repository.UserRepository,
	bot adapter.TelegramBotAdapter,
	locker Locker,
	translator *i18n.Translator,
	adminIDs []int64,
	logger *zerolog.Logger,
) *expiryReportUC {
	l := logger.With().Str("component", "ExpiryReport").Logger()
	return &expiryReportUC{users: users, bot: bot, locker: locker, translator: translator, adminIDs: adminIDs, log: &l}
}

// Report returns the number of expired-but-active users it found. When another
// replica holds the report lock it returns 0 and no error.
func (e *expiryReportUC) Report(ctx context.Context, now time.Time) (int, error) {
	defer logging.TraceDuration(e.log, "ExpiryReport.Report")()

	if e.locker != nil {
		const key = "lock:expiry_report"
		token, err := e.locker.TryLock(ctx, key, 5*time.Minute)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				e.log.Debug().Msg("expiry report already running elsewhere")
				return 0, nil
			}
			return 0, err
		}
		defer func() {
			if err := e.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
				e.log.Warn().Err(err).Msg("unlock expiry report")
			}
		}()
	}

	expired, err := e.users.ListExpiredActive(ctx, repository.NoTX, now)
	if err != nil {
		return 0, fmt.Errorf("list expired users: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	for i, u := range expired {
		if i == maxReportLines {
			sb.WriteString(fmt.Sprintf("… +%d", len(expired)-maxReportLines))
			break
		}
		name := u.Username
		if name == "" {
			name = e.translator.T("value_none")
		} else {
			name = "@" + name
		}
		sb.WriteString(e.translator.T("expiry_report_line", u.ID, name, u.Plan, u.PlanExpiry.UTC().Format("2006-01-02 15:04")))
		sb.WriteString("\n")
	}
	text := e.translator.T("expiry_report", len(expired), sb.String())

	for _, id := range e.adminIDs {
		if err := e.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: id, Text: text, ParseMode: adapter.ParseModeHTML}); err != nil {
			e.log.Warn().Err(err).Int64("admin", id).Msg("failed to send expiry report")
		}
	}
	e.log.Info().Int("expired", len(expired)).Msg("expiry report sent")
	return len(expired), nil
}

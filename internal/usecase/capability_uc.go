package usecase

import (
	"context"

	"promo-bot/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

// CapabilityChecker answers whether the bot may post in a group.
type CapabilityChecker interface {
	IsBotAdminIn(ctx context.Context, chatID int64) bool
}

var _ CapabilityChecker = (*capabilityUC)(nil)

type capabilityUC struct {
	bot adapter.TelegramBotAdapter
	log *zerolog.Logger
}

func NewCapabilityChecker(bot adapter.TelegramBotAdapter, logger *zerolog.Logger) *capabilityUC {
	l := logger.With().Str("component", "CapabilityCheck").Logger()
	return &capabilityUC{bot: bot, log: &l}
}

// IsBotAdminIn never returns an error: an unreachable chat, a chat the bot left or
// a rate-limited lookup all count as "not admin".
func (c *capabilityUC) IsBotAdminIn(ctx context.Context, chatID int64) bool {
	status, err := c.bot.GetBotMemberStatus(ctx, chatID)
	if err != nil {
		c.log.Debug().Err(err).Int64("chat_id", chatID).Msg("get chat member failed")
		return false
	}
	return IsAdminStatus(status)
}

// IsAdminStatus reports whether a membership status grants posting rights.
func IsAdminStatus(status string) bool {
	return status == adapter.MemberStatusAdministrator || status == adapter.MemberStatusCreator
}

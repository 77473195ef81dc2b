package telegram

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"promo-bot/internal/domain/ports/adapter"
)

var _ Bot = (*NoopBotAdapter)(nil)

// NoopBotAdapter logs outbound calls instead of reaching the Bot API. It
// reports itself as administrator everywhere so promotion runs can be dry-run.
type NoopBotAdapter struct {
	username string
	log      *zerolog.Logger
}

func NewNoopBotAdapter(username string, logger *zerolog.Logger) *NoopBotAdapter {
	l := logger.With().Str("component", "NoopBot").Logger()
	return &NoopBotAdapter{username: username, log: &l}
}

func (b *NoopBotAdapter) Username() string { return b.username }

func (b *NoopBotAdapter) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Int64("chat_id", params.ChatID).Str("text", params.Text).Msg("send message")
	return nil
}

func (b *NoopBotAdapter) GetBotMemberStatus(ctx context.Context, chatID int64) (string, error) {
	return adapter.MemberStatusAdministrator, ctx.Err()
}

func (b *NoopBotAdapter) GetChat(ctx context.Context, chatID int64) (*adapter.ChatInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &adapter.ChatInfo{ID: chatID, Title: "chat " + strconv.FormatInt(chatID, 10), Type: "supergroup"}, nil
}

func (b *NoopBotAdapter) AnswerCallback(ctx context.Context, callbackID, text string) error {
	b.log.Debug().Str("callback_id", callbackID).Str("text", text).Msg("answer callback")
	return nil
}

func (b *NoopBotAdapter) EditInlineKeyboard(ctx context.Context, chatID int64, messageID int, rows [][]adapter.Button) error {
	b.log.Debug().Int64("chat_id", chatID).Int("message_id", messageID).Int("rows", len(rows)).Msg("edit keyboard")
	return nil
}

func (b *NoopBotAdapter) SetWebhook(ctx context.Context, url string) error {
	b.log.Info().Msg("set webhook skipped")
	return nil
}

func (b *NoopBotAdapter) RemoveWebhook(ctx context.Context) error {
	b.log.Info().Msg("remove webhook skipped")
	return nil
}

func (b *NoopBotAdapter) SetMenuCommands(ctx context.Context, adminIDs []int64) error {
	b.log.Info().Int("admin_scopes", len(adminIDs)).Msg("set menu commands skipped")
	return nil
}

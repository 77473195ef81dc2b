package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"promo-bot/internal/config"
	"promo-bot/internal/domain/ports/adapter"
	"promo-bot/internal/infra/i18n"
)

// Sender is the outbound side of the bot used by the update handler.
type Sender interface {
	adapter.TelegramBotAdapter
	AnswerCallback(ctx context.Context, callbackID, text string) error
	EditInlineKeyboard(ctx context.Context, chatID int64, messageID int, rows [][]adapter.Button) error
	Username() string
}

// WebhookManager registers and removes the bot's webhook.
type WebhookManager interface {
	SetWebhook(ctx context.Context, url string) error
	RemoveWebhook(ctx context.Context) error
}

// Bot is everything the process needs from a bot implementation.
type Bot interface {
	Sender
	WebhookManager
	SetMenuCommands(ctx context.Context, adminIDs []int64) error
}

var _ Bot = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter talks to the Bot API through tgbotapi.
type RealTelegramBotAdapter struct {
	bot        *tgbotapi.BotAPI
	cfg        *config.BotConfig
	translator *i18n.Translator
	log        *zerolog.Logger
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, translator *i18n.Translator, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	return newRealTelegramBotAdapter(cfg, tgbotapi.APIEndpoint, translator, logger)
}

func newRealTelegramBotAdapter(cfg *config.BotConfig, endpoint string, translator *i18n.Translator, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if translator == nil {
		return nil, errors.New("translator is nil")
	}
	// NewBotAPIWithAPIEndpoint calls getMe, so a bad token fails here.
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram getMe: %w", err)
	}
	l := logger.With().Str("component", "TelegramBot").Logger()
	l.Info().Int64("bot_id", bot.Self.ID).Str("username", bot.Self.UserName).Msg("telegram bot authorized")
	return &RealTelegramBotAdapter{bot: bot, cfg: cfg, translator: translator, log: &l}, nil
}

// Username prefers the configured name over the one reported by getMe.
func (r *RealTelegramBotAdapter) Username() string {
	if r.cfg.Username != "" {
		return r.cfg.Username
	}
	return r.bot.Self.UserName
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(params.ChatID, params.Text)
	msg.ParseMode = params.ParseMode
	msg.ReplyToMessageID = params.ReplyToMessageID
	if params.ReplyMarkup != nil {
		msg.ReplyMarkup = toTelegramMarkup(*params.ReplyMarkup)
	}
	if _, err := r.bot.Send(msg); err != nil {
		return fmt.Errorf("send message to %d: %w", params.ChatID, err)
	}
	return nil
}

func (r *RealTelegramBotAdapter) GetBotMemberStatus(ctx context.Context, chatID int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	member, err := r.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: r.bot.Self.ID},
	})
	if err != nil {
		return "", fmt.Errorf("get chat member in %d: %w", chatID, err)
	}
	return member.Status, nil
}

func (r *RealTelegramBotAdapter) GetChat(ctx context.Context, chatID int64) (*adapter.ChatInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	chat, err := r.bot.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: tgbotapi.ChatConfig{ChatID: chatID}})
	if err != nil {
		return nil, fmt.Errorf("get chat %d: %w", chatID, err)
	}
	return &adapter.ChatInfo{ID: chat.ID, Title: chat.Title, Type: chat.Type}, nil
}

// AnswerCallback stops the button spinner, optionally with a toast.
func (r *RealTelegramBotAdapter) AnswerCallback(ctx context.Context, callbackID, text string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

func (r *RealTelegramBotAdapter) EditInlineKeyboard(ctx context.Context, chatID int64, messageID int, rows [][]adapter.Button) error {
	_, err := r.bot.Request(tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, toInlineKeyboard(rows)))
	return err
}

func (r *RealTelegramBotAdapter) SetWebhook(ctx context.Context, url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("build webhook: %w", err)
	}
	if _, err := r.bot.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	r.log.Info().Str("host", wh.URL.Host).Msg("webhook set")
	return nil
}

func (r *RealTelegramBotAdapter) RemoveWebhook(ctx context.Context) error {
	if _, err := r.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("remove webhook: %w", err)
	}
	r.log.Info().Msg("webhook removed")
	return nil
}

// SetMenuCommands publishes the command list shown by Telegram clients. Admins
// get the privileged commands in their private chat scope.
func (r *RealTelegramBotAdapter) SetMenuCommands(ctx context.Context, adminIDs []int64) error {
	public := []tgbotapi.BotCommand{
		{Command: "start", Description: r.translator.T("cmd_start")},
		{Command: "help", Description: r.translator.T("cmd_help")},
		{Command: "register_group", Description: r.translator.T("cmd_register_group")},
	}
	if _, err := r.bot.Request(tgbotapi.NewSetMyCommands(public...)); err != nil {
		return fmt.Errorf("set default commands: %w", err)
	}
	admin := append(public,
		tgbotapi.BotCommand{Command: "active", Description: r.translator.T("cmd_active")},
		tgbotapi.BotCommand{Command: "stats", Description: r.translator.T("cmd_stats")},
		tgbotapi.BotCommand{Command: "addgroup", Description: r.translator.T("cmd_addgroup")},
		tgbotapi.BotCommand{Command: "removegroup", Description: r.translator.T("cmd_removegroup")},
	)
	for _, id := range adminIDs {
		cfg := tgbotapi.NewSetMyCommandsWithScope(tgbotapi.NewBotCommandScopeChat(id), admin...)
		if _, err := r.bot.Request(cfg); err != nil {
			return fmt.Errorf("set admin commands for %d: %w", id, err)
		}
	}
	return nil
}

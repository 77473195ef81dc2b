package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"promo-bot/internal/domain/ports/adapter"
	"promo-bot/internal/infra/logging"
	"promo-bot/internal/infra/metrics"
)

type commandHandler func(ctx context.Context, msg *tgbotapi.Message) error

func (h *UpdateHandler) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":          h.handleStartCommand,
		"help":           h.handleHelpCommand,
		"register_group": h.handleRegisterGroupCommand,

		"active":      h.adminOnly(h.handleActiveCommand),
		"stats":       h.adminOnly(h.handleStatsCommand),
		"addgroup":    h.adminOnly(h.handleAddGroupCommand),
		"removegroup": h.adminOnly(h.handleRemoveGroupCommand),
	}
}

// adminOnly drops commands from non-admins without a reply.
func (h *UpdateHandler) adminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, msg *tgbotapi.Message) error {
		if !h.isAdmin(msg.From.ID) {
			metrics.IncAdminCommand("/"+msg.Command(), "unauthorized")
			return nil
		}
		metrics.IncAdminCommand("/"+msg.Command(), "authorized")
		return next(ctx, msg)
	}
}

func (h *UpdateHandler) handleStartCommand(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := h.facade.HandleStart(ctx, msg.From.ID, msg.From.UserName, msg.From.FirstName, msg.CommandArguments())
	if err != nil {
		logging.With(ctx, h.log).Error().Err(err).Msg("start")
		return h.reply(ctx, msg.Chat.ID, h.translator.T("generic_error"), nil)
	}
	return h.reply(ctx, msg.Chat.ID, text, h.mainMenu())
}

func (h *UpdateHandler) handleHelpCommand(ctx context.Context, msg *tgbotapi.Message) error {
	text := h.translator.T("help")
	if h.isAdmin(msg.From.ID) {
		text += h.translator.T("help_admin")
	}
	return h.reply(ctx, msg.Chat.ID, text, nil)
}

// handleRegisterGroupCommand answers in the group, threaded to the command.
func (h *UpdateHandler) handleRegisterGroupCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chat := adapter.ChatInfo{ID: msg.Chat.ID, Title: msg.Chat.Title, Type: msg.Chat.Type}
	text := h.facade.HandleRegisterGroup(ctx, chat, msg.From.ID)
	return h.sender.SendMessage(ctx, adapter.SendMessageParams{
		ChatID:           msg.Chat.ID,
		Text:             text,
		ParseMode:        adapter.ParseModeHTML,
		ReplyToMessageID: msg.MessageID,
	})
}

func (h *UpdateHandler) handleActiveCommand(ctx context.Context, msg *tgbotapi.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.facade.HandleActivate(ctx, msg.CommandArguments(), msg.From.ID), nil)
}

func (h *UpdateHandler) handleStatsCommand(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := h.facade.HandleStats(ctx)
	if err != nil {
		logging.With(ctx, h.log).Error().Err(err).Msg("stats")
		text = h.translator.T("generic_error")
	}
	return h.reply(ctx, msg.Chat.ID, text, nil)
}

func (h *UpdateHandler) handleAddGroupCommand(ctx context.Context, msg *tgbotapi.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.facade.HandleAddGroup(ctx, msg.CommandArguments(), msg.From.ID), nil)
}

func (h *UpdateHandler) handleRemoveGroupCommand(ctx context.Context, msg *tgbotapi.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.facade.HandleRemoveGroup(ctx, msg.CommandArguments()), nil)
}

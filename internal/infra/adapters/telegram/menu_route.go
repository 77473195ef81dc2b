package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type menuHandler func(ctx context.Context, msg *tgbotapi.Message) error

// menuRoutes keys the reply keyboard labels to their screens.
func (h *UpdateHandler) menuRoutes() map[string]menuHandler {
	return map[string]menuHandler{
		h.translator.T("menu_account"):   h.handleAccountMenu,
		h.translator.T("menu_wallet"):    h.handleWalletMenu,
		h.translator.T("menu_materials"): h.handleMaterialsMenu,
		h.translator.T("menu_promotion"): h.handlePromotionMenu,
		h.translator.T("menu_plans"):     h.handlePlansMenu,
		h.translator.T("menu_support"):   h.handleSupportMenu,
	}
}

func (h *UpdateHandler) handleAccountMenu(ctx context.Context, msg *tgbotapi.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.facade.HandleAccount(ctx, msg.From.ID), nil)
}

func (h *UpdateHandler) handleWalletMenu(ctx context.Context, msg *tgbotapi.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.translator.T("wallet_menu"), h.walletMenu())
}

func (h *UpdateHandler) handleMaterialsMenu(ctx context.Context, msg *tgbotapi.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.translator.T("materials_menu"), h.materialsMenu())
}

// handlePromotionMenu is only shown to users with an active plan.
func (h *UpdateHandler) handlePromotionMenu(ctx context.Context, msg *tgbotapi.Message) error {
	if ok, refusal := h.facade.CanPromote(ctx, msg.From.ID); !ok {
		return h.reply(ctx, msg.Chat.ID, refusal, nil)
	}
	return h.reply(ctx, msg.Chat.ID, h.translator.T("promotion_menu"), h.promotionMenu())
}

func (h *UpdateHandler) handlePlansMenu(ctx context.Context, msg *tgbotapi.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.translator.T("plans_prompt"), h.plansMenu())
}

func (h *UpdateHandler) handleSupportMenu(ctx context.Context, msg *tgbotapi.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.translator.T("support_menu"), h.supportMenu())
}

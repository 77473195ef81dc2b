package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/adapter"
)

func toTelegramMarkup(m adapter.ReplyMarkup) interface{} {
	if m.IsInline {
		return toInlineKeyboard(m.Buttons)
	}
	rows := make([][]tgbotapi.KeyboardButton, 0, len(m.Buttons))
	for _, row := range m.Buttons {
		if len(row) == 0 {
			continue
		}
		r := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, btn := range row {
			r = append(r, tgbotapi.NewKeyboardButton(btn.Text))
		}
		rows = append(rows, r)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

// toInlineKeyboard builds inline rows. A button with a URL opens the link;
// otherwise it sends Data, falling back to the label.
func toInlineKeyboard(rows [][]adapter.Button) tgbotapi.InlineKeyboardMarkup {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, r)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...)
}

func inline(rows ...[]adapter.Button) *adapter.ReplyMarkup {
	return &adapter.ReplyMarkup{Buttons: rows, IsInline: true}
}

func row(buttons ...adapter.Button) []adapter.Button { return buttons }

func (h *UpdateHandler) btn(key, data string) adapter.Button {
	return adapter.Button{Text: h.translator.T(key), Data: data}
}

func (h *UpdateHandler) backRow() []adapter.Button {
	return row(h.btn("btn_back", cbBackMain))
}

// mainMenu is the persistent reply keyboard; its labels double as menu routes.
func (h *UpdateHandler) mainMenu() *adapter.ReplyMarkup {
	b := func(key string) adapter.Button { return adapter.Button{Text: h.translator.T(key)} }
	return &adapter.ReplyMarkup{Buttons: [][]adapter.Button{
		row(b("menu_account"), b("menu_wallet")),
		row(b("menu_materials"), b("menu_promotion")),
		row(b("menu_plans"), b("menu_support")),
	}}
}

func (h *UpdateHandler) materialsMenu() *adapter.ReplyMarkup {
	return inline(
		row(h.btn("btn_mat_save", cbMatSave)),
		row(h.btn("btn_mat_view", cbMatView), h.btn("btn_mat_clear", cbMatClear)),
		h.backRow(),
	)
}

func (h *UpdateHandler) walletMenu() *adapter.ReplyMarkup {
	return inline(
		row(h.btn("btn_wallet_balance", cbWalletBalance)),
		row(h.btn("btn_ref_link", cbRefLink), h.btn("btn_ref_stats", cbRefStats)),
		h.backRow(),
	)
}

func (h *UpdateHandler) promotionMenu() *adapter.ReplyMarkup {
	return inline(
		row(h.btn("btn_prom_show_groups", cbPromShowGroups)),
		row(h.btn("btn_prom_start", cbPromStart)),
		row(h.btn("btn_prom_clear", cbPromClear)),
		h.backRow(),
	)
}

func (h *UpdateHandler) supportMenu() *adapter.ReplyMarkup {
	return inline(
		row(h.btn("btn_contact_admin", cbContactAdmin)),
		row(h.btn("btn_bot_status", cbBotStatus)),
		h.backRow(),
	)
}

// plansMenu puts the two short plans on their own rows and pairs the rest.
func (h *UpdateHandler) plansMenu() *adapter.ReplyMarkup {
	var rows [][]adapter.Button
	for i, p := range model.Plans() {
		b := adapter.Button{
			Text: h.translator.T("btn_plan", p.Label, p.PriceUSD),
			Data: prefixPlan + p.Code,
		}
		if i < 3 {
			rows = append(rows, row(b))
			continue
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], b)
	}
	return inline(rows...)
}

package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"promo-bot/internal/domain"
	"promo-bot/internal/domain/ports/adapter"
	"promo-bot/internal/domain/ports/repository"
	"promo-bot/internal/infra/logging"
)

const (
	cbBackMain       = "back_main"
	cbMatSave        = "mat_save"
	cbMatView        = "mat_view"
	cbMatClear       = "mat_clear"
	cbWalletBalance  = "wallet_balance"
	cbRefLink        = "ref_link"
	cbRefStats       = "ref_stats"
	cbPromShowGroups = "prom_show_groups"
	cbPromStart      = "prom_start"
	cbPromClear      = "prom_clear"
	cbPromSendAll    = "prom_send_all"
	cbSelConfirm     = "sel_confirm"
	cbContactAdmin   = "contact_admin"
	cbBotStatus      = "bot_status"

	prefixDeleteMaterial = "delmat_"
	prefixSendMaterial   = "sendmat_"
	prefixSelectGroup    = "selgroup_"
	prefixPromSend       = "prom_send_"
	prefixPlan           = "plan_"
)

// callback is a decoded callback query. Arg is the data after a matched prefix.
type callback struct {
	ID        string
	UserID    int64
	ChatID    int64
	MessageID int
	Data      string
	Arg       string
}

// callbackHandler returns the toast shown on the pressed button, usually empty.
type callbackHandler func(ctx context.Context, cb *callback) (string, error)

type prefixCallback struct {
	Prefix string
	Fn     callbackHandler
}

func (h *UpdateHandler) callbackRoutes() map[string]callbackHandler {
	return map[string]callbackHandler{
		cbBackMain:       h.backMainCB,
		cbMatSave:        h.materialSaveCB,
		cbMatView:        h.materialViewCB,
		cbMatClear:       h.materialClearCB,
		cbWalletBalance:  h.walletBalanceCB,
		cbRefLink:        h.referralLinkCB,
		cbRefStats:       h.referralStatsCB,
		cbPromShowGroups: h.showGroupsCB,
		cbPromStart:      h.promotionStartCB,
		cbPromClear:      h.selectionClearCB,
		cbPromSendAll:    h.promotionSendAllCB,
		cbSelConfirm:     h.selectionConfirmCB,
		cbContactAdmin:   h.contactAdminCB,
		cbBotStatus:      h.botStatusCB,
	}
}

func (h *UpdateHandler) callbackPrefixRoutes() []prefixCallback {
	return []prefixCallback{
		{Prefix: prefixDeleteMaterial, Fn: h.deleteMaterialCB},
		{Prefix: prefixSendMaterial, Fn: h.sendMaterialCB},
		{Prefix: prefixSelectGroup, Fn: h.selectGroupCB},
		{Prefix: prefixPromSend, Fn: h.promotionSendOneCB},
		{Prefix: prefixPlan, Fn: h.planCB},
	}
}

// resolveCallback prefers exact matches so prom_send_all never reaches the
// prom_send_ prefix.
func (h *UpdateHandler) resolveCallback(data string) (callbackHandler, string) {
	if fn, ok := h.callbacks[data]; ok {
		return fn, ""
	}
	for _, p := range h.prefixes {
		if strings.HasPrefix(data, p.Prefix) {
			return p.Fn, strings.TrimPrefix(data, p.Prefix)
		}
	}
	return nil, ""
}

func (h *UpdateHandler) backMainCB(ctx context.Context, cb *callback) (string, error) {
	return "", h.reply(ctx, cb.UserID, h.translator.T("back_main"), h.mainMenu())
}

// ---- materials ----

func (h *UpdateHandler) materialSaveCB(ctx context.Context, cb *callback) (string, error) {
	st := &repository.ConversationState{Step: repository.StepAwaitingMaterial}
	if err := h.state.SetState(ctx, cb.UserID, st); err != nil {
		return "", fmt.Errorf("set awaiting state: %w", err)
	}
	return "", h.reply(ctx, cb.UserID, h.translator.T("material_prompt"), nil)
}

// materialViewCB sends one message per material with its own actions.
func (h *UpdateHandler) materialViewCB(ctx context.Context, cb *callback) (string, error) {
	mats, err := h.facade.ListMaterials(ctx, cb.UserID)
	if err != nil {
		return "", err
	}
	if len(mats) == 0 {
		return "", h.reply(ctx, cb.UserID, h.translator.T("materials_none"), nil)
	}
	for _, m := range mats {
		id := strconv.FormatInt(m.ID, 10)
		text := h.translator.T("material_item", m.ID, m.CreatedAt.UTC().Format("2006-01-02 15:04:05"), html.EscapeString(m.Preview()))
		kb := inline(
			row(h.btn("btn_mat_send_now", prefixSendMaterial+id)),
			row(h.btn("btn_mat_delete", prefixDeleteMaterial+id)),
		)
		if err := h.reply(ctx, cb.UserID, text, kb); err != nil {
			return "", err
		}
	}
	return "", nil
}

func (h *UpdateHandler) deleteMaterialCB(ctx context.Context, cb *callback) (string, error) {
	id, err := strconv.ParseInt(cb.Arg, 10, 64)
	if err != nil {
		return h.translator.T("unknown_callback"), nil
	}
	return "", h.reply(ctx, cb.UserID, h.facade.HandleDeleteMaterial(ctx, cb.UserID, id), nil)
}

// sendMaterialCB echoes the full stored text back to its owner as plain text.
func (h *UpdateHandler) sendMaterialCB(ctx context.Context, cb *callback) (string, error) {
	id, err := strconv.ParseInt(cb.Arg, 10, 64)
	if err != nil {
		return h.translator.T("unknown_callback"), nil
	}
	m, err := h.facade.GetMaterial(ctx, cb.UserID, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "", h.reply(ctx, cb.UserID, h.translator.T("material_not_found"), nil)
	case err != nil:
		return "", err
	}
	return "", h.sender.SendMessage(ctx, adapter.SendMessageParams{ChatID: cb.UserID, Text: m.Text})
}

func (h *UpdateHandler) materialClearCB(ctx context.Context, cb *callback) (string, error) {
	return "", h.reply(ctx, cb.UserID, h.facade.HandleClearMaterials(ctx, cb.UserID), nil)
}

// ---- wallet & referral ----

func (h *UpdateHandler) walletBalanceCB(ctx context.Context, cb *callback) (string, error) {
	return "", h.reply(ctx, cb.UserID, h.facade.HandleWalletBalance(ctx, cb.UserID), nil)
}

func (h *UpdateHandler) referralLinkCB(ctx context.Context, cb *callback) (string, error) {
	return "", h.reply(ctx, cb.UserID, h.facade.HandleReferralLink(h.sender.Username(), cb.UserID), nil)
}

func (h *UpdateHandler) referralStatsCB(ctx context.Context, cb *callback) (string, error) {
	return "", h.reply(ctx, cb.UserID, h.facade.HandleReferralStats(ctx, cb.UserID), nil)
}

// ---- group selection ----

func (h *UpdateHandler) showGroupsCB(ctx context.Context, cb *callback) (string, error) {
	rows, err := h.groupRows(ctx, cb.UserID)
	if err != nil {
		return "", err
	}
	if rows == nil {
		return "", h.reply(ctx, cb.UserID, h.translator.T("groups_none"), nil)
	}
	return "", h.reply(ctx, cb.UserID, h.translator.T("groups_select_prompt"), inline(rows...))
}

// selectGroupCB toggles one group and redraws the list so the check marks
// follow the stored selection.
func (h *UpdateHandler) selectGroupCB(ctx context.Context, cb *callback) (string, error) {
	gid, err := strconv.ParseInt(cb.Arg, 10, 64)
	if err != nil {
		return h.translator.T("unknown_callback"), nil
	}
	if _, err := h.facade.ToggleGroup(ctx, cb.UserID, gid); err != nil {
		return "", err
	}
	if cb.MessageID != 0 {
		rows, err := h.groupRows(ctx, cb.UserID)
		if err == nil && rows != nil {
			err = h.sender.EditInlineKeyboard(ctx, cb.ChatID, cb.MessageID, rows)
		}
		if err != nil {
			logging.With(ctx, h.log).Warn().Err(err).Msg("redraw group selection")
		}
	}
	return h.translator.T("selection_updated"), nil
}

// groupRows returns nil when no group is registered.
func (h *UpdateHandler) groupRows(ctx context.Context, userID int64) ([][]adapter.Button, error) {
	groups, err := h.facade.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, nil
	}
	sel, err := h.facade.Selection(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows := make([][]adapter.Button, 0, len(groups)+2)
	for _, g := range groups {
		label := g.DisplayName()
		if sel.Has(g.ChatID) {
			label = h.translator.T("btn_group_selected", label)
		}
		rows = append(rows, row(adapter.Button{
			Text: label,
			Data: prefixSelectGroup + strconv.FormatInt(g.ChatID, 10),
		}))
	}
	rows = append(rows, row(h.btn("btn_sel_confirm", cbSelConfirm)), h.backRow())
	return rows, nil
}

func (h *UpdateHandler) selectionConfirmCB(ctx context.Context, cb *callback) (string, error) {
	return "", h.reply(ctx, cb.UserID, h.facade.HandleSelectionConfirm(ctx, cb.UserID), nil)
}

func (h *UpdateHandler) selectionClearCB(ctx context.Context, cb *callback) (string, error) {
	return "", h.reply(ctx, cb.UserID, h.facade.HandleSelectionClear(ctx, cb.UserID), nil)
}

// ---- promotion ----

func (h *UpdateHandler) promotionStartCB(ctx context.Context, cb *callback) (string, error) {
	if ok, refusal := h.facade.CanPromote(ctx, cb.UserID); !ok {
		return "", h.reply(ctx, cb.UserID, refusal, nil)
	}
	text, ids := h.facade.HandlePromotionStart(ctx, cb.UserID, h.maxMaterials)
	if ids == nil {
		return "", h.reply(ctx, cb.UserID, text, nil)
	}
	rows := [][]adapter.Button{row(h.btn("btn_prom_send_all", cbPromSendAll))}
	for _, id := range ids {
		rows = append(rows, row(adapter.Button{
			Text: h.translator.T("btn_prom_send_one", id),
			Data: prefixPromSend + strconv.FormatInt(id, 10),
		}))
	}
	return "", h.reply(ctx, cb.UserID, text, inline(rows...))
}

func (h *UpdateHandler) promotionSendAllCB(ctx context.Context, cb *callback) (string, error) {
	return "", h.promotionSend(ctx, cb.UserID, nil)
}

func (h *UpdateHandler) promotionSendOneCB(ctx context.Context, cb *callback) (string, error) {
	id, err := strconv.ParseInt(cb.Arg, 10, 64)
	if err != nil {
		return h.translator.T("unknown_callback"), nil
	}
	return "", h.promotionSend(ctx, cb.UserID, &id)
}

// promotionSend re-checks the plan since the buttons may outlive it.
func (h *UpdateHandler) promotionSend(ctx context.Context, userID int64, materialID *int64) error {
	if ok, refusal := h.facade.CanPromote(ctx, userID); !ok {
		return h.reply(ctx, userID, refusal, nil)
	}
	return h.reply(ctx, userID, h.facade.HandlePromotionSend(ctx, userID, materialID), nil)
}

// ---- support & plans ----

func (h *UpdateHandler) contactAdminCB(ctx context.Context, cb *callback) (string, error) {
	kb := inline(row(adapter.Button{
		Text: h.translator.T("btn_contact_admin_url"),
		URL:  "https://t.me/" + strings.TrimPrefix(h.adminUsername, "@"),
	}))
	return "", h.reply(ctx, cb.UserID, h.translator.T("contact_admin"), kb)
}

func (h *UpdateHandler) botStatusCB(ctx context.Context, cb *callback) (string, error) {
	return "", h.reply(ctx, cb.UserID, h.translator.T("bot_status"), nil)
}

func (h *UpdateHandler) planCB(ctx context.Context, cb *callback) (string, error) {
	return "", h.reply(ctx, cb.UserID, h.facade.HandlePlanSelected(cb.Arg), nil)
}

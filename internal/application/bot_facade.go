package application

import (
	"context"
	"errors"
	"html"
	"strconv"
	"strings"

	"promo-bot/internal/domain"
	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/adapter"
	"promo-bot/internal/infra/i18n"
	"promo-bot/internal/usecase"

	"github.com/rs/zerolog"
)

const dateTimeLayout = "2006-01-02 15:04:05"

// BotFacade composes use cases into high-level bot actions.
// Methods return the reply text so the Telegram adapter only handles keyboards and delivery.
type BotFacade struct {
	UserUC      usecase.UserUseCase
	ReferralUC  usecase.ReferralUseCase
	MaterialUC  usecase.MaterialUseCase
	SelectionUC usecase.SelectionUseCase
	GroupUC     usecase.GroupUseCase
	PromotionUC usecase.PromotionUseCase
	StatsUC     usecase.StatsUseCase

	translator    *i18n.Translator
	adminUsername string
	log           *zerolog.Logger
}

func NewBotFacade(
	userUC usecase.UserUseCase,
	referralUC usecase.ReferralUseCase,
	materialUC usecase.MaterialUseCase,
	selectionUC usecase.SelectionUseCase,
	groupUC usecase.GroupUseCase,
	promotionUC usecase.PromotionUseCase,
	statsUC usecase.StatsUseCase,
	translator *i18n.Translator,
	adminUsername string,
	logger *zerolog.Logger,
) *BotFacade {
	l := logger.With().Str("component", "BotFacade").Logger()
	return &BotFacade{
		UserUC:        userUC,
		ReferralUC:    referralUC,
		MaterialUC:    materialUC,
		SelectionUC:   selectionUC,
		GroupUC:       groupUC,
		PromotionUC:   promotionUC,
		StatsUC:       statsUC,
		translator:    translator,
		adminUsername: adminUsername,
		log:           &l,
	}
}

// HandleStart registers the user on first contact, credits a pending referral and
// returns the welcome text. A failed credit does not block the welcome.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64, username, firstName, startParam string) (string, error) {
	u, err := b.UserUC.RegisterOrFetch(ctx, tgID, username, firstName, startParam)
	if err != nil {
		return "", err
	}
	if _, err := b.ReferralUC.CreditIfPending(ctx, tgID); err != nil {
		b.log.Error().Err(err).Int64("tg_id", tgID).Msg("referral credit failed")
	}
	name := firstName
	if name == "" {
		name = u.FirstName
	}
	return b.translator.T("welcome", html.EscapeString(name)), nil
}

func (b *BotFacade) HandleAccount(ctx context.Context, tgID int64) string {
	u, ok, text := b.user(ctx, tgID)
	if !ok {
		return text
	}
	none := b.translator.T("value_none")
	username := none
	if u.Username != "" {
		username = "@" + u.Username
	}
	status := b.translator.T("status_inactive")
	if u.Active {
		status = b.translator.T("status_active")
	}
	expiry := none
	if u.PlanExpiry != nil {
		expiry = u.PlanExpiry.UTC().Format(dateTimeLayout)
	}
	return b.translator.T("account_info",
		html.EscapeString(u.FirstName), u.ID, html.EscapeString(username),
		u.JoinedAt.UTC().Format(dateTimeLayout), status, u.Plan, expiry, u.Wallet)
}

func (b *BotFacade) HandleWalletBalance(ctx context.Context, tgID int64) string {
	u, ok, text := b.user(ctx, tgID)
	if !ok {
		return text
	}
	return b.translator.T("wallet_balance", u.Wallet)
}

func (b *BotFacade) HandleReferralLink(botUsername string, tgID int64) string {
	return b.translator.T("referral_link", b.ReferralUC.Link(botUsername, tgID), model.ReferralBonus)
}

func (b *BotFacade) HandleReferralStats(ctx context.Context, tgID int64) string {
	st, err := b.ReferralUC.Stats(ctx, tgID)
	if err != nil {
		b.log.Error().Err(err).Int64("tg_id", tgID).Msg("referral stats")
		return b.translator.T("generic_error")
	}
	return b.translator.T("referral_stats", st.Total, st.Credited)
}

func (b *BotFacade) HandlePlanSelected(code string) string {
	p, err := model.PlanByCode(code)
	if err != nil {
		return b.translator.T("plan_invalid")
	}
	return b.translator.T("plan_selected", p.Label, p.PriceUSD, b.adminUsername)
}

// CanPromote gates the promotion panel on the user's active flag. The second
// return value is the refusal text.
func (b *BotFacade) CanPromote(ctx context.Context, tgID int64) (bool, string) {
	u, err := b.UserUC.Get(ctx, tgID)
	if err != nil || !u.Active {
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			b.log.Error().Err(err).Int64("tg_id", tgID).Msg("load user for promotion gate")
		}
		return false, b.translator.T("promotion_inactive", b.adminUsername)
	}
	return true, ""
}

// ---- materials ----

func (b *BotFacade) HandleSaveMaterial(ctx context.Context, tgID int64, text, source string) string {
	n, err := b.MaterialUC.Save(ctx, tgID, text, source)
	switch {
	case errors.Is(err, domain.ErrEmptyMaterial):
		return b.translator.T("material_empty")
	case err != nil:
		b.log.Error().Err(err).Int64("tg_id", tgID).Msg("save material")
		return b.translator.T("generic_error")
	case source == usecase.MaterialSourceAuto:
		return b.translator.T("material_saved_auto", n)
	default:
		return b.translator.T("material_saved", n)
	}
}

func (b *BotFacade) ListMaterials(ctx context.Context, tgID int64) ([]*model.Material, error) {
	return b.MaterialUC.List(ctx, tgID)
}

// GetMaterial returns one of tgID's materials or domain.ErrNotFound.
func (b *BotFacade) GetMaterial(ctx context.Context, tgID, id int64) (*model.Material, error) {
	return b.MaterialUC.Get(ctx, tgID, id)
}

func (b *BotFacade) HandleDeleteMaterial(ctx context.Context, tgID, id int64) string {
	if _, err := b.MaterialUC.Delete(ctx, tgID, id); err != nil {
		b.log.Error().Err(err).Int64("tg_id", tgID).Int64("material", id).Msg("delete material")
		return b.translator.T("generic_error")
	}
	return b.translator.T("material_deleted", id)
}

func (b *BotFacade) HandleClearMaterials(ctx context.Context, tgID int64) string {
	if _, err := b.MaterialUC.Clear(ctx, tgID); err != nil {
		b.log.Error().Err(err).Int64("tg_id", tgID).Msg("clear materials")
		return b.translator.T("generic_error")
	}
	return b.translator.T("materials_cleared")
}

// ---- selection & promotion ----

func (b *BotFacade) ListGroups(ctx context.Context) ([]*model.Group, error) {
	return b.GroupUC.List(ctx)
}

func (b *BotFacade) Selection(ctx context.Context, tgID int64) (*model.Selection, error) {
	return b.SelectionUC.Get(ctx, tgID)
}

func (b *BotFacade) ToggleGroup(ctx context.Context, tgID, groupID int64) (bool, error) {
	return b.SelectionUC.Toggle(ctx, tgID, groupID)
}

func (b *BotFacade) HandleSelectionConfirm(ctx context.Context, tgID int64) string {
	sel, err := b.SelectionUC.Get(ctx, tgID)
	if err != nil {
		b.log.Error().Err(err).Int64("tg_id", tgID).Msg("load selection")
		return b.translator.T("generic_error")
	}
	if sel.IsEmpty() {
		return b.translator.T("selection_empty")
	}
	return b.translator.T("selection_confirmed", sel.Len())
}

func (b *BotFacade) HandleSelectionClear(ctx context.Context, tgID int64) string {
	if err := b.SelectionUC.Clear(ctx, tgID); err != nil {
		b.log.Error().Err(err).Int64("tg_id", tgID).Msg("clear selection")
		return b.translator.T("generic_error")
	}
	return b.translator.T("selection_cleared")
}

// HandlePromotionStart checks that a run is possible and returns the prompt plus
// up to limit material ids the user can pick from. ids is nil when the run
// cannot start and text explains why.
func (b *BotFacade) HandlePromotionStart(ctx context.Context, tgID int64, limit int) (text string, ids []int64) {
	sel, err := b.SelectionUC.Get(ctx, tgID)
	if err != nil {
		b.log.Error().Err(err).Int64("tg_id", tgID).Msg("load selection")
		return b.translator.T("generic_error"), nil
	}
	if sel.IsEmpty() {
		return b.translator.T("promotion_no_groups"), nil
	}
	mats, err := b.MaterialUC.List(ctx, tgID)
	if err != nil {
		b.log.Error().Err(err).Int64("tg_id", tgID).Msg("list materials")
		return b.translator.T("generic_error"), nil
	}
	if len(mats) == 0 {
		return b.translator.T("promotion_no_materials"), nil
	}
	for i, m := range mats {
		if i == limit {
			break
		}
		ids = append(ids, m.ID)
	}
	return b.translator.T("promotion_choose"), ids
}

// HandlePromotionSend queues a run with every material (materialID nil) or one
// of them. Once queued it returns the start acknowledgement; the run reports
// skips and the final summary on its own.
func (b *BotFacade) HandlePromotionSend(ctx context.Context, tgID int64, materialID *int64) string {
	req, err := b.PromotionUC.Start(ctx, tgID, materialID)
	switch {
	case err == nil:
		return b.translator.T("promotion_starting", len(req.GroupIDs))
	case errors.Is(err, domain.ErrNoGroupsSelected):
		return b.translator.T("promotion_no_groups")
	case errors.Is(err, domain.ErrNoMaterials):
		return b.translator.T("promotion_no_materials")
	case errors.Is(err, domain.ErrNotFound):
		return b.translator.T("material_not_found")
	case errors.Is(err, domain.ErrQueueFull):
		return b.translator.T("promotion_busy")
	default:
		b.log.Error().Err(err).Int64("tg_id", tgID).Msg("start promotion")
		return b.translator.T("generic_error")
	}
}

// ---- groups ----

func (b *BotFacade) HandleRegisterGroup(ctx context.Context, chat adapter.ChatInfo, fromID int64) string {
	g, err := b.GroupUC.RegisterFromChat(ctx, chat, fromID)
	switch {
	case errors.Is(err, domain.ErrNotGroupChat):
		return b.translator.T("register_group_not_group")
	case errors.Is(err, domain.ErrBotNotAdmin):
		return b.translator.T("register_group_not_admin")
	case err != nil:
		return b.translator.T("register_group_check_failed", html.EscapeString(err.Error()))
	}
	return b.translator.T("register_group_done", html.EscapeString(g.DisplayName()))
}

// ---- admin ----

// HandleActivate parses "<PLAN_CODE> <USER_ID>". Admin replies may echo error text.
func (b *BotFacade) HandleActivate(ctx context.Context, args string, adminID int64) string {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return b.translator.T("active_usage", planCodes())
	}
	uid, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return b.translator.T("active_failed", html.EscapeString(err.Error()))
	}
	if _, err := model.PlanByCode(parts[0]); err != nil {
		return b.translator.T("active_invalid_plan")
	}
	plan, expiry, err := b.UserUC.Activate(ctx, uid, parts[0])
	if err != nil {
		return b.translator.T("active_failed", html.EscapeString(err.Error()))
	}
	b.log.Info().Int64("admin", adminID).Int64("tg_id", uid).Str("plan", plan.Code).Msg("user activated")
	return b.translator.T("active_done", uid, plan.Code, expiry.UTC().Format(dateTimeLayout))
}

func (b *BotFacade) HandleStats(ctx context.Context) (string, error) {
	t, err := b.StatsUC.Totals(ctx)
	if err != nil {
		return "", err
	}
	return b.translator.T("admin_stats", t.Users, t.ActiveUsers, t.Groups), nil
}

func (b *BotFacade) HandleAddGroup(ctx context.Context, args string, adminID int64) string {
	parts := strings.Fields(args)
	if len(parts) != 1 {
		return b.translator.T("addgroup_usage")
	}
	chatID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return b.translator.T("invalid_chat_id")
	}
	g, err := b.GroupUC.AddByID(ctx, chatID, adminID)
	switch {
	case errors.Is(err, domain.ErrBotNotAdmin):
		return b.translator.T("addgroup_not_admin")
	case err != nil:
		return b.translator.T("addgroup_failed", html.EscapeString(err.Error()))
	}
	return b.translator.T("addgroup_done", html.EscapeString(g.DisplayName()))
}

// HandleRemoveGroup confirms the removal even when the id was not registered.
func (b *BotFacade) HandleRemoveGroup(ctx context.Context, args string) string {
	parts := strings.Fields(args)
	if len(parts) != 1 {
		return b.translator.T("removegroup_usage")
	}
	chatID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return b.translator.T("invalid_chat_id")
	}
	if _, err := b.GroupUC.Remove(ctx, chatID); err != nil {
		return b.translator.T("removegroup_failed", html.EscapeString(err.Error()))
	}
	return b.translator.T("removegroup_done", chatID)
}

func (b *BotFacade) user(ctx context.Context, tgID int64) (*model.User, bool, string) {
	u, err := b.UserUC.Get(ctx, tgID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, false, b.translator.T("user_not_found")
	}
	if err != nil {
		b.log.Error().Err(err).Int64("tg_id", tgID).Msg("load user")
		return nil, false, b.translator.T("generic_error")
	}
	return u, true, ""
}

func planCodes() string {
	var codes []string
	for _, p := range model.Plans() {
		codes = append(codes, p.Code)
	}
	return strings.Join(codes, ",")
}

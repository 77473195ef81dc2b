package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/adapter"
	"promo-bot/internal/domain/ports/repository"
	"promo-bot/internal/infra/i18n"
	"promo-bot/internal/infra/logging"
	"promo-bot/internal/infra/metrics"
	"promo-bot/internal/infra/redis"
	"promo-bot/internal/usecase"
)

// Facade is the application surface the router drives. Handle* methods return
// the reply text.
type Facade interface {
	HandleStart(ctx context.Context, tgID int64, username, firstName, startParam string) (string, error)
	HandleAccount(ctx context.Context, tgID int64) string
	HandleWalletBalance(ctx context.Context, tgID int64) string
	HandleReferralLink(botUsername string, tgID int64) string
	HandleReferralStats(ctx context.Context, tgID int64) string
	HandlePlanSelected(code string) string
	CanPromote(ctx context.Context, tgID int64) (bool, string)

	ListMaterials(ctx context.Context, tgID int64) ([]*model.Material, error)
	GetMaterial(ctx context.Context, tgID, id int64) (*model.Material, error)
	HandleSaveMaterial(ctx context.Context, tgID int64, text, source string) string
	HandleDeleteMaterial(ctx context.Context, tgID, id int64) string
	HandleClearMaterials(ctx context.Context, tgID int64) string

	ListGroups(ctx context.Context) ([]*model.Group, error)
	Selection(ctx context.Context, tgID int64) (*model.Selection, error)
	ToggleGroup(ctx context.Context, tgID, groupID int64) (bool, error)
	HandleSelectionConfirm(ctx context.Context, tgID int64) string
	HandleSelectionClear(ctx context.Context, tgID int64) string
	HandlePromotionStart(ctx context.Context, tgID int64, limit int) (string, []int64)
	HandlePromotionSend(ctx context.Context, tgID int64, materialID *int64) string

	HandleRegisterGroup(ctx context.Context, chat adapter.ChatInfo, fromID int64) string
	HandleActivate(ctx context.Context, args string, adminID int64) string
	HandleStats(ctx context.Context) (string, error)
	HandleAddGroup(ctx context.Context, args string, adminID int64) string
	HandleRemoveGroup(ctx context.Context, args string) string
}

// Limiter decides whether a key may proceed within a window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type HandlerOptions struct {
	AdminIDs      []int64
	AdminUsername string
	CommandLimit  int
	CallbackLimit int
	Window        time.Duration
	// MaxMaterials caps the per-material buttons offered when starting a promotion.
	MaxMaterials int
}

// UpdateHandler routes Telegram updates to the facade and delivers the replies.
type UpdateHandler struct {
	sender     Sender
	facade     Facade
	translator *i18n.Translator
	limiter    Limiter
	state      repository.StateRepository

	adminIDs      map[int64]struct{}
	adminUsername string
	cmdLimit      int
	cbLimit       int
	window        time.Duration
	maxMaterials  int

	commands  map[string]commandHandler
	callbacks map[string]callbackHandler
	prefixes  []prefixCallback
	menu      map[string]menuHandler

	log *zerolog.Logger
}

func NewUpdateHandler(
	sender Sender,
	facade Facade,
	translator *i18n.Translator,
	limiter Limiter,
	state repository.StateRepository,
	opts HandlerOptions,
	logger *zerolog.Logger,
) *UpdateHandler {
	admins := make(map[int64]struct{}, len(opts.AdminIDs))
	for _, id := range opts.AdminIDs {
		admins[id] = struct{}{}
	}
	if opts.MaxMaterials <= 0 {
		opts.MaxMaterials = 10
	}
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	l := logger.With().Str("component", "UpdateHandler").Logger()
	h := &UpdateHandler{
		sender:        sender,
		facade:        facade,
		translator:    translator,
		limiter:       limiter,
		state:         state,
		adminIDs:      admins,
		adminUsername: opts.AdminUsername,
		cmdLimit:      opts.CommandLimit,
		cbLimit:       opts.CallbackLimit,
		window:        opts.Window,
		maxMaterials:  opts.MaxMaterials,
		log:           &l,
	}
	h.commands = h.commandRoutes()
	h.callbacks = h.callbackRoutes()
	h.prefixes = h.callbackPrefixRoutes()
	h.menu = h.menuRoutes()
	return h
}

// HandleUpdate processes one update. Failures are logged and never returned so
// the webhook can always acknowledge Telegram.
func (h *UpdateHandler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	ctx = logging.WithTraceID(ctx, ulid.Make().String())
	defer func() {
		if rec := recover(); rec != nil {
			metrics.IncWebhookUpdate("panic")
			logging.With(ctx, h.log).Error().Interface("panic", rec).Int("update_id", update.UpdateID).Msg("update handler panicked")
		}
	}()

	var err error
	switch {
	case update.CallbackQuery != nil:
		err = h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		err = h.handleMessage(ctx, update.Message)
	default:
		metrics.IncWebhookUpdate("ignored")
		return
	}
	if err != nil {
		metrics.IncWebhookUpdate("error")
		logging.With(ctx, h.log).Error().Err(err).Int("update_id", update.UpdateID).Msg("handle update")
		return
	}
	metrics.IncWebhookUpdate("ok")
}

func (h *UpdateHandler) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	ctx = logging.WithTgID(ctx, msg.From.ID)

	if msg.IsCommand() {
		cmd := msg.Command()
		route, ok := h.commands[cmd]
		if !ok {
			return nil
		}
		metrics.IncTelegramCommand(cmd)
		if !h.allow(ctx, msg.From.ID, "cmd", h.cmdLimit) {
			return h.reply(ctx, msg.Chat.ID, h.translator.T("rate_limited"), nil)
		}
		return route(ctx, msg)
	}

	if !msg.Chat.IsPrivate() {
		return nil
	}
	return h.handlePrivateText(ctx, msg)
}

// handlePrivateText resolves a non-command private message: a pending save
// prompt wins, then the main menu labels, then the text is saved automatically.
func (h *UpdateHandler) handlePrivateText(ctx context.Context, msg *tgbotapi.Message) error {
	userID := msg.From.ID
	st, err := h.state.GetState(ctx, userID)
	if err != nil {
		logging.With(ctx, h.log).Warn().Err(err).Msg("load conversation state")
	}
	if st != nil && st.Step == repository.StepAwaitingMaterial {
		if err := h.state.ClearState(ctx, userID); err != nil {
			logging.With(ctx, h.log).Warn().Err(err).Msg("clear conversation state")
		}
		text := h.facade.HandleSaveMaterial(ctx, userID, msg.Text, usecase.MaterialSourceExplicit)
		return h.reply(ctx, msg.Chat.ID, text, nil)
	}

	if route, ok := h.menu[msg.Text]; ok {
		return route(ctx, msg)
	}
	if msg.Text == "" {
		return nil
	}
	return h.reply(ctx, msg.Chat.ID, h.facade.HandleSaveMaterial(ctx, userID, msg.Text, usecase.MaterialSourceAuto), nil)
}

func (h *UpdateHandler) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	if cq.From == nil {
		return nil
	}
	ctx = logging.WithTgID(ctx, cq.From.ID)
	cb := &callback{ID: cq.ID, UserID: cq.From.ID, ChatID: cq.From.ID, Data: cq.Data}
	if cq.Message != nil {
		cb.ChatID = cq.Message.Chat.ID
		cb.MessageID = cq.Message.MessageID
	}

	if !h.allow(ctx, cb.UserID, "cb", h.cbLimit) {
		return h.sender.AnswerCallback(ctx, cb.ID, h.translator.T("rate_limited"))
	}

	route, arg := h.resolveCallback(cb.Data)
	if route == nil {
		return h.sender.AnswerCallback(ctx, cb.ID, h.translator.T("unknown_callback"))
	}
	cb.Arg = arg
	toast, err := route(ctx, cb)
	if err != nil {
		_ = h.sender.AnswerCallback(ctx, cb.ID, h.translator.T("generic_error"))
		return fmt.Errorf("callback %q: %w", cb.Data, err)
	}
	return h.sender.AnswerCallback(ctx, cb.ID, toast)
}

// allow fails open when the limiter is unavailable.
func (h *UpdateHandler) allow(ctx context.Context, userID int64, kind string, limit int) bool {
	if h.limiter == nil || limit <= 0 {
		return true
	}
	ok, err := h.limiter.Allow(ctx, redis.UserCommandKey(userID, kind), limit, h.window)
	if err != nil {
		logging.With(ctx, h.log).Warn().Err(err).Msg("rate limiter unavailable")
		return true
	}
	if !ok {
		metrics.IncRateLimitTriggered()
	}
	return ok
}

func (h *UpdateHandler) isAdmin(userID int64) bool {
	_, ok := h.adminIDs[userID]
	return ok
}

func (h *UpdateHandler) reply(ctx context.Context, chatID int64, text string, markup *adapter.ReplyMarkup) error {
	if text == "" {
		return nil
	}
	return h.sender.SendMessage(ctx, adapter.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   adapter.ParseModeHTML,
		ReplyMarkup: markup,
	})
}

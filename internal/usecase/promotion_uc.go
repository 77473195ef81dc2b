package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"promo-bot/internal/domain"
	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/adapter"
	"promo-bot/internal/domain/ports/repository"
	"promo-bot/internal/infra/i18n"
	"promo-bot/internal/infra/logging"
	"promo-bot/internal/infra/metrics"
	"promo-bot/internal/infra/worker"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

var _ PromotionUseCase = (*promotionUC)(nil)

type PromotionUseCase interface {
	// Start builds a run from the user's selection and materials (all of them
	// when materialID is nil) and queues it. It returns domain.ErrQueueFull when
	// the worker pool cannot take more runs.
	Start(ctx context.Context, requesterID int64, materialID *int64) (*model.PromotionRequest, error)
	// Run executes a promotion synchronously and reports the tally to the requester.
	Run(ctx context.Context, req model.PromotionRequest) *model.PromotionResult
}

// PromotionOption customises a promotion use case.
type PromotionOption func(*promotionUC)

// WithSleep replaces the pause between sends.
func WithSleep(fn func(time.Duration)) PromotionOption {
	return func(p *promotionUC) { p.sleep = fn }
}

type promotionUC struct {
	selections repository.SelectionRepository
	materials  repository.MaterialRepository
	capability CapabilityChecker
	bot        adapter.TelegramBotAdapter
	workerPool *worker.Pool
	translator *i18n.Translator
	delay      time.Duration
	sleep      func(time.Duration)
	log        *zerolog.Logger
}

func NewPromotionUseCase(
	selections repository.SelectionRepository,
	materials repository.MaterialRepository,
	capability CapabilityChecker,
	bot adapter.TelegramBotAdapter,
	pool *worker.Pool,
	translator *i18n.Translator,
	delay time.Duration,
	logger *zerolog.Logger,
	opts ...PromotionOption,
) *promotionUC {
	l := logger.With().Str("component", "PromotionUC").Logger()
	p := &promotionUC{
		selections: selections,
		materials:  materials,
		capability: capability,
		bot:        bot,
		workerPool: pool,
		translator: translator,
		delay:      delay,
		sleep:      time.Sleep,
		log:        &l,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *promotionUC) Start(ctx context.Context, requesterID int64, materialID *int64) (*model.PromotionRequest, error) {
	defer logging.TraceDuration(p.log, "PromotionUC.Start")()

	sel, err := p.selections.Get(ctx, repository.NoTX, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load selection: %w", err)
	}
	if sel.IsEmpty() {
		return nil, domain.ErrNoGroupsSelected
	}

	var messages []string
	if materialID == nil {
		mats, err := p.materials.ListByUser(ctx, repository.NoTX, requesterID)
		if err != nil {
			return nil, fmt.Errorf("load materials: %w", err)
		}
		for _, m := range mats {
			messages = append(messages, m.Text)
		}
	} else {
		m, err := p.materials.FindByID(ctx, repository.NoTX, requesterID, *materialID)
		if err != nil {
			return nil, err
		}
		messages = []string{m.Text}
	}
	if len(messages) == 0 {
		return nil, domain.ErrNoMaterials
	}

	req := model.PromotionRequest{
		RunID:       ulid.Make().String(),
		RequesterID: requesterID,
		GroupIDs:    sel.GroupIDs(),
		Messages:    messages,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := p.workerPool.Submit(func(ctx context.Context) error {
		p.Run(ctx, req)
		return nil
	}); err != nil {
		metrics.IncPromotionRun("rejected")
		p.log.Warn().Err(err).Str("run_id", req.RunID).Int64("tg_id", requesterID).Msg("promotion not queued")
		if errors.Is(err, domain.ErrQueueFull) {
			return nil, domain.ErrQueueFull
		}
		return nil, fmt.Errorf("queue promotion: %w", err)
	}
	metrics.IncPromotionRun("queued")
	p.log.Info().Str("run_id", req.RunID).Int64("tg_id", requesterID).
		Int("groups", len(req.GroupIDs)).Int("messages", len(req.Messages)).Msg("promotion queued")
	return &req, nil
}

func (p *promotionUC) Run(ctx context.Context, req model.PromotionRequest) *model.PromotionResult {
	ctx = logging.WithRunID(logging.WithTgID(ctx, req.RequesterID), req.RunID)
	log := logging.With(ctx, p.log)
	defer logging.TraceDuration(log, "PromotionUC.Run")()
	start := time.Now()

	res := model.NewPromotionResult(req.RunID, len(req.GroupIDs))
	sends := 0
	for _, gid := range req.GroupIDs {
		outcome := p.promoteGroup(ctx, log, gid, req, &sends)
		res.Record(gid, outcome)
		metrics.IncPromotionGroup(string(outcome))
	}

	p.notify(ctx, req.RequesterID, p.translator.T("promotion_finished", res.Succeeded, res.Failed, res.Total))

	metrics.IncPromotionRun("finished")
	metrics.ObservePromotionRun(time.Since(start).Seconds())
	log.Info().Int("succeeded", res.Succeeded).Int("failed", res.Failed).Int("total", res.Total).
		Dur("took", time.Since(start)).Msg("promotion finished")
	return res
}

// promoteGroup sends every message to one group. sends counts attempts across
// the whole run so the pause only falls between consecutive sends.
func (p *promotionUC) promoteGroup(ctx context.Context, log *zerolog.Logger, gid int64, req model.PromotionRequest, sends *int) (outcome model.GroupOutcome) {
	sent := 0
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Int64("group", gid).Int("delivered", sent).Interface("panic", rec).Msg("promotion to group panicked")
			outcome = model.OutcomeFailed
			if sent > 0 {
				outcome = model.OutcomeSent
			}
		}
	}()

	if !p.capability.IsBotAdminIn(ctx, gid) {
		p.notify(ctx, req.RequesterID, p.translator.T("promotion_skipping", gid))
		log.Info().Int64("group", gid).Msg("skipping group: bot is not admin")
		return model.OutcomeSkipped
	}

	for i, msg := range req.Messages {
		if *sends > 0 && p.delay > 0 {
			p.sleep(p.delay)
		}
		*sends++
		err := p.bot.SendMessage(ctx, adapter.SendMessageParams{
			ChatID:    gid,
			Text:      msg,
			ParseMode: adapter.ParseModeHTML,
		})
		metrics.IncPromotionMessage(err == nil)
		if err != nil {
			log.Warn().Err(err).Int64("group", gid).Int("message", i).Msg("failed to send promotion message")
			continue
		}
		sent++
	}
	if sent == 0 {
		return model.OutcomeFailed
	}
	return model.OutcomeSent
}

func (p *promotionUC) notify(ctx context.Context, chatID int64, text string) {
	if err := p.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		p.log.Warn().Err(err).Int64("tg_id", chatID).Msg("failed to notify requester")
	}
}

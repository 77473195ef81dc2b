package usecase

import (
	"context"
	"fmt"
	"strconv"

	"promo-bot/internal/domain"
	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/adapter"
	"promo-bot/internal/domain/ports/repository"
	"promo-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

var _ GroupUseCase = (*groupUC)(nil)

type GroupUseCase interface {
	// RegisterFromChat registers the chat a command was sent in. The bot must be
	// an administrator there.
	RegisterFromChat(ctx context.Context, chat adapter.ChatInfo, registeredBy int64) (*model.Group, error)
	// AddByID looks the chat up on Telegram and registers it if the bot is an administrator.
	AddByID(ctx context.Context, chatID, registeredBy int64) (*model.Group, error)
	Remove(ctx context.Context, chatID int64) (bool, error)
	List(ctx context.Context) ([]*model.Group, error)
}

type groupUC struct {
	groups     repository.GroupRepository
	bot        adapter.TelegramBotAdapter
	capability CapabilityChecker
	log        *zerolog.Logger
}

func NewGroupUseCase(groups repository.GroupRepository, bot adapter.TelegramBotAdapter, capability CapabilityChecker, logger *zerolog.Logger) *groupUC {
	l := logger.With().Str("component", "GroupUC").Logger()
	return &groupUC{groups: groups, bot: bot, capability: capability, log: &l}
}

func isGroupChat(chatType string) bool {
	return chatType == "group" || chatType == "supergroup"
}

func (g *groupUC) RegisterFromChat(ctx context.Context, chat adapter.ChatInfo, registeredBy int64) (*model.Group, error) {
	defer logging.TraceDuration(g.log, "GroupUC.RegisterFromChat")()

	if !isGroupChat(chat.Type) {
		return nil, domain.ErrNotGroupChat
	}
	// Unlike the promotion gate, a lookup failure is reported to the caller here.
	status, err := g.bot.GetBotMemberStatus(ctx, chat.ID)
	if err != nil {
		return nil, fmt.Errorf("verify bot status in %d: %w", chat.ID, err)
	}
	if !IsAdminStatus(status) {
		return nil, domain.ErrBotNotAdmin
	}
	return g.save(ctx, chat.ID, chat.Title, registeredBy)
}

func (g *groupUC) AddByID(ctx context.Context, chatID, registeredBy int64) (*model.Group, error) {
	defer logging.TraceDuration(g.log, "GroupUC.AddByID")()

	info, err := g.bot.GetChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get chat %d: %w", chatID, err)
	}
	if !g.capability.IsBotAdminIn(ctx, chatID) {
		return nil, domain.ErrBotNotAdmin
	}
	title := info.Title
	if title == "" {
		title = strconv.FormatInt(chatID, 10)
	}
	return g.save(ctx, chatID, title, registeredBy)
}

func (g *groupUC) save(ctx context.Context, chatID int64, title string, registeredBy int64) (*model.Group, error) {
	grp, err := model.NewGroup(chatID, title, registeredBy)
	if err != nil {
		return nil, err
	}
	if err := g.groups.Upsert(ctx, repository.NoTX, grp); err != nil {
		return nil, fmt.Errorf("register group %d: %w", chatID, err)
	}
	g.log.Info().Int64("chat_id", chatID).Int64("by", registeredBy).Msg("group registered")
	return grp, nil
}

func (g *groupUC) Remove(ctx context.Context, chatID int64) (bool, error) {
	ok, err := g.groups.Delete(ctx, repository.NoTX, chatID)
	if err == nil && ok {
		g.log.Info().Int64("chat_id", chatID).Msg("group removed")
	}
	return ok, err
}

func (g *groupUC) List(ctx context.Context) ([]*model.Group, error) {
	return g.groups.List(ctx, repository.NoTX)
}

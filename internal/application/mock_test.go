//go:build !integration

package application_test

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"promo-bot/internal/application"
	"promo-bot/internal/domain"
	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/adapter"
	"promo-bot/internal/infra/i18n"
	"promo-bot/internal/usecase"
)

type mockUserUC struct {
	users       map[int64]*model.User
	registerErr error
	activateErr error
	activated   map[int64]string
}

func (m *mockUserUC) RegisterOrFetch(ctx context.Context, tgID int64, username, firstName, startParam string) (*model.User, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	if u, ok := m.users[tgID]; ok {
		return u, nil
	}
	u, err := model.NewUser(tgID, username, firstName)
	if err != nil {
		return nil, err
	}
	m.users[tgID] = u
	return u, nil
}

func (m *mockUserUC) Get(ctx context.Context, tgID int64) (*model.User, error) {
	u, ok := m.users[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *mockUserUC) Activate(ctx context.Context, tgID int64, planCode string) (model.Plan, time.Time, error) {
	if m.activateErr != nil {
		return model.Plan{}, time.Time{}, m.activateErr
	}
	p, err := model.PlanByCode(planCode)
	if err != nil {
		return model.Plan{}, time.Time{}, err
	}
	if m.activated == nil {
		m.activated = map[int64]string{}
	}
	m.activated[tgID] = planCode
	return p, time.Date(2026, 1, 8, 10, 0, 0, 0, time.UTC), nil
}

type mockReferralUC struct {
	creditErr error
	credits   int
	stats     model.ReferralStats
}

func (m *mockReferralUC) CreditIfPending(ctx context.Context, newUserID int64) (bool, error) {
	m.credits++
	return false, m.creditErr
}

func (m *mockReferralUC) Stats(ctx context.Context, referrerID int64) (model.ReferralStats, error) {
	return m.stats, nil
}

func (m *mockReferralUC) Link(botUsername string, userID int64) string {
	return "https://t.me/" + botUsername + "?start=" + model.ReferralCode(userID)
}

type mockMaterialUC struct {
	list    []*model.Material
	saveN   int
	saveErr error
}

func (m *mockMaterialUC) Save(ctx context.Context, userID int64, text, source string) (int, error) {
	return m.saveN, m.saveErr
}

func (m *mockMaterialUC) List(ctx context.Context, userID int64) ([]*model.Material, error) {
	return m.list, nil
}

func (m *mockMaterialUC) Get(ctx context.Context, userID, id int64) (*model.Material, error) {
	for _, mat := range m.list {
		if mat.ID == id {
			return mat, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockMaterialUC) Delete(ctx context.Context, userID, id int64) (int64, error) { return 1, nil }
func (m *mockMaterialUC) Clear(ctx context.Context, userID int64) (int64, error)      { return 0, nil }

type mockSelectionUC struct {
	sel *model.Selection
}

func (m *mockSelectionUC) Toggle(ctx context.Context, userID, groupID int64) (bool, error) {
	return m.sel.Toggle(groupID), nil
}
func (m *mockSelectionUC) Clear(ctx context.Context, userID int64) error {
	m.sel = model.NewSelection(userID)
	return nil
}
func (m *mockSelectionUC) Get(ctx context.Context, userID int64) (*model.Selection, error) {
	return m.sel, nil
}

type mockGroupUC struct {
	RegisterFromChatFunc func(ctx context.Context, chat adapter.ChatInfo, registeredBy int64) (*model.Group, error)
	AddByIDFunc          func(ctx context.Context, chatID, registeredBy int64) (*model.Group, error)
	removed              []int64
}

func (m *mockGroupUC) RegisterFromChat(ctx context.Context, chat adapter.ChatInfo, registeredBy int64) (*model.Group, error) {
	return m.RegisterFromChatFunc(ctx, chat, registeredBy)
}
func (m *mockGroupUC) AddByID(ctx context.Context, chatID, registeredBy int64) (*model.Group, error) {
	return m.AddByIDFunc(ctx, chatID, registeredBy)
}
func (m *mockGroupUC) Remove(ctx context.Context, chatID int64) (bool, error) {
	m.removed = append(m.removed, chatID)
	return false, nil
}
func (m *mockGroupUC) List(ctx context.Context) ([]*model.Group, error) { return nil, nil }

type mockPromotionUC struct {
	startErr error
	started  []*int64
}

func (m *mockPromotionUC) Start(ctx context.Context, requesterID int64, materialID *int64) (*model.PromotionRequest, error) {
	m.started = append(m.started, materialID)
	if m.startErr != nil {
		return nil, m.startErr
	}
	return &model.PromotionRequest{RunID: "run", RequesterID: requesterID, GroupIDs: []int64{-1, -2}, Messages: []string{"A"}}, nil
}
func (m *mockPromotionUC) Run(ctx context.Context, req model.PromotionRequest) *model.PromotionResult {
	return model.NewPromotionResult(req.RunID, 0)
}

type mockStatsUC struct {
	totals usecase.Totals
	err    error
}

func (m *mockStatsUC) Totals(ctx context.Context) (usecase.Totals, error) { return m.totals, m.err }

type facadeDeps struct {
	users     *mockUserUC
	referrals *mockReferralUC
	materials *mockMaterialUC
	selection *mockSelectionUC
	groups    *mockGroupUC
	promotion *mockPromotionUC
	stats     *mockStatsUC
}

func newFacade() (*application.BotFacade, *facadeDeps) {
	d := &facadeDeps{
		users:     &mockUserUC{users: map[int64]*model.User{}},
		referrals: &mockReferralUC{},
		materials: &mockMaterialUC{},
		selection: &mockSelectionUC{sel: model.NewSelection(1)},
		groups:    &mockGroupUC{},
		promotion: &mockPromotionUC{},
		stats:     &mockStatsUC{},
	}
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		panic(err)
	}
	logger := zerolog.New(io.Discard)
	f := application.NewBotFacade(d.users, d.referrals, d.materials, d.selection, d.groups, d.promotion, d.stats, tr, "@boss", &logger)
	return f, d
}

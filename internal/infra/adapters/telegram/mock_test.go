//go:build !integration

package telegram

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"promo-bot/internal/domain"
	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/adapter"
	"promo-bot/internal/domain/ports/repository"
)

// --- Sender ---

type sentMessage = adapter.SendMessageParams

type fakeSender struct {
	mu       sync.Mutex
	messages []sentMessage
	answers  map[string]string
	edits    [][][]adapter.Button
}

var _ Sender = (*fakeSender)(nil)

func newFakeSender() *fakeSender { return &fakeSender{answers: map[string]string{}} }

func (f *fakeSender) SendMessage(ctx context.Context, p adapter.SendMessageParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, p)
	return nil
}

func (f *fakeSender) GetBotMemberStatus(ctx context.Context, chatID int64) (string, error) {
	return adapter.MemberStatusAdministrator, nil
}

func (f *fakeSender) GetChat(ctx context.Context, chatID int64) (*adapter.ChatInfo, error) {
	return &adapter.ChatInfo{ID: chatID}, nil
}

func (f *fakeSender) AnswerCallback(ctx context.Context, callbackID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers[callbackID] = text
	return nil
}

func (f *fakeSender) EditInlineKeyboard(ctx context.Context, chatID int64, messageID int, rows [][]adapter.Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, rows)
	return nil
}

func (f *fakeSender) Username() string { return "promo_bot" }

func (f *fakeSender) last(t *testing.T) sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		t.Fatal("expected a message to be sent")
	}
	return f.messages[len(f.messages)-1]
}

// --- Facade ---

// fakeFacade answers with "<method>:<args>" strings and records each call.
type fakeFacade struct {
	mu    sync.Mutex
	calls []string

	startErr  error
	active    bool
	materials []*model.Material
	groups    []*model.Group
	selected  map[int64]bool
	promoIDs  []int64
	panicOn   string
}

var _ Facade = (*fakeFacade)(nil)

func newFakeFacade() *fakeFacade { return &fakeFacade{selected: map[int64]bool{}} }

func (f *fakeFacade) record(format string, args ...any) string {
	s := fmt.Sprintf(format, args...)
	f.mu.Lock()
	f.calls = append(f.calls, s)
	f.mu.Unlock()
	if f.panicOn != "" && f.panicOn == s {
		panic("facade exploded")
	}
	return s
}

func (f *fakeFacade) called(s string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == s {
			return true
		}
	}
	return false
}

func (f *fakeFacade) HandleStart(ctx context.Context, tgID int64, username, firstName, startParam string) (string, error) {
	s := f.record("start:%d:%s:%s", tgID, firstName, startParam)
	return s, f.startErr
}

func (f *fakeFacade) HandleAccount(ctx context.Context, tgID int64) string {
	return f.record("account:%d", tgID)
}

func (f *fakeFacade) HandleWalletBalance(ctx context.Context, tgID int64) string {
	return f.record("wallet:%d", tgID)
}

func (f *fakeFacade) HandleReferralLink(botUsername string, tgID int64) string {
	return f.record("link:%s:%d", botUsername, tgID)
}

func (f *fakeFacade) HandleReferralStats(ctx context.Context, tgID int64) string {
	return f.record("refstats:%d", tgID)
}

func (f *fakeFacade) HandlePlanSelected(code string) string { return f.record("plan:%s", code) }

func (f *fakeFacade) CanPromote(ctx context.Context, tgID int64) (bool, string) {
	f.record("canpromote:%d", tgID)
	if f.active {
		return true, ""
	}
	return false, "inactive"
}

func (f *fakeFacade) ListMaterials(ctx context.Context, tgID int64) ([]*model.Material, error) {
	return f.materials, nil
}

func (f *fakeFacade) GetMaterial(ctx context.Context, tgID, id int64) (*model.Material, error) {
	f.record("getmat:%d:%d", tgID, id)
	for _, m := range f.materials {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeFacade) HandleSaveMaterial(ctx context.Context, tgID int64, text, source string) string {
	return f.record("save:%d:%s:%s", tgID, source, text)
}

func (f *fakeFacade) HandleDeleteMaterial(ctx context.Context, tgID, id int64) string {
	return f.record("delete:%d:%d", tgID, id)
}

func (f *fakeFacade) HandleClearMaterials(ctx context.Context, tgID int64) string {
	return f.record("clear:%d", tgID)
}

func (f *fakeFacade) ListGroups(ctx context.Context) ([]*model.Group, error) { return f.groups, nil }

func (f *fakeFacade) Selection(ctx context.Context, tgID int64) (*model.Selection, error) {
	var ids []int64
	for id, on := range f.selected {
		if on {
			ids = append(ids, id)
		}
	}
	return model.NewSelection(tgID, ids...), nil
}

func (f *fakeFacade) ToggleGroup(ctx context.Context, tgID, groupID int64) (bool, error) {
	f.record("toggle:%d:%d", tgID, groupID)
	f.selected[groupID] = !f.selected[groupID]
	return f.selected[groupID], nil
}

func (f *fakeFacade) HandleSelectionConfirm(ctx context.Context, tgID int64) string {
	return f.record("confirm:%d", tgID)
}

func (f *fakeFacade) HandleSelectionClear(ctx context.Context, tgID int64) string {
	return f.record("selclear:%d", tgID)
}

func (f *fakeFacade) HandlePromotionStart(ctx context.Context, tgID int64, limit int) (string, []int64) {
	return f.record("promstart:%d:%d", tgID, limit), f.promoIDs
}

func (f *fakeFacade) HandlePromotionSend(ctx context.Context, tgID int64, materialID *int64) string {
	if materialID == nil {
		return f.record("promsend:%d:all", tgID)
	}
	return f.record("promsend:%d:%d", tgID, *materialID)
}

func (f *fakeFacade) HandleRegisterGroup(ctx context.Context, chat adapter.ChatInfo, fromID int64) string {
	return f.record("register:%d:%s:%d", chat.ID, chat.Type, fromID)
}

func (f *fakeFacade) HandleActivate(ctx context.Context, args string, adminID int64) string {
	return f.record("activate:%s:%d", args, adminID)
}

func (f *fakeFacade) HandleStats(ctx context.Context) (string, error) { return f.record("stats"), nil }

func (f *fakeFacade) HandleAddGroup(ctx context.Context, args string, adminID int64) string {
	return f.record("addgroup:%s:%d", args, adminID)
}

func (f *fakeFacade) HandleRemoveGroup(ctx context.Context, args string) string {
	return f.record("removegroup:%s", args)
}

// --- state & limiter ---

type memState struct {
	mu     sync.Mutex
	states map[int64]*repository.ConversationState
}

func newMemState() *memState {
	return &memState{states: map[int64]*repository.ConversationState{}}
}

func (m *memState) SetState(ctx context.Context, tgID int64, st *repository.ConversationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[tgID] = st
	return nil
}

func (m *memState) GetState(ctx context.Context, tgID int64) (*repository.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[tgID], nil
}

func (m *memState) ClearState(ctx context.Context, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, tgID)
	return nil
}

type fakeLimiter struct {
	deny bool
	err  error
	keys []string
}

func (l *fakeLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	return !l.deny, l.err
}

// --- fixtures ---

type handlerFixture struct {
	h       *UpdateHandler
	sender  *fakeSender
	facade  *fakeFacade
	state   *memState
	limiter *fakeLimiter
}

const (
	testUser  int64 = 42
	testAdmin int64 = 7
)

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	fx := &handlerFixture{
		sender:  newFakeSender(),
		facade:  newFakeFacade(),
		state:   newMemState(),
		limiter: &fakeLimiter{},
	}
	logger := zerolog.Nop()
	fx.h = NewUpdateHandler(fx.sender, fx.facade, newTestTranslator(t), fx.limiter, fx.state, HandlerOptions{
		AdminIDs:      []int64{testAdmin},
		AdminUsername: "@boss",
		CommandLimit:  5,
		CallbackLimit: 5,
		Window:        time.Minute,
		MaxMaterials:  10,
	}, &logger)
	return fx
}

func privateText(from int64, text string) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: 1, Message: &tgbotapi.Message{
		MessageID: 11,
		From:      &tgbotapi.User{ID: from, FirstName: "Ann", UserName: "ann"},
		Chat:      &tgbotapi.Chat{ID: from, Type: "private"},
		Text:      text,
	}}
}

func command(from, chatID int64, chatType, text string) tgbotapi.Update {
	end := len(text)
	for i, r := range text {
		if r == ' ' {
			end = i
			break
		}
	}
	return tgbotapi.Update{UpdateID: 2, Message: &tgbotapi.Message{
		MessageID: 12,
		From:      &tgbotapi.User{ID: from, FirstName: "Ann", UserName: "ann"},
		Chat:      &tgbotapi.Chat{ID: chatID, Type: chatType, Title: "Deals"},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}},
	}}
}

func callbackUpdate(from int64, data string) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: 3, CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-" + data,
		From: &tgbotapi.User{ID: from},
		Message: &tgbotapi.Message{
			MessageID: 99,
			Chat:      &tgbotapi.Chat{ID: from, Type: "private"},
		},
		Data: data,
	}}
}

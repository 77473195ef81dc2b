//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"promo-bot/internal/domain"
	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/adapter"
	"promo-bot/internal/domain/ports/repository"
	"promo-bot/internal/infra/i18n"
)

// =============================
// Adapters
// =============================

// ---- Mock TelegramBotAdapter ----

type MockTelegramBot struct {
	mu   sync.Mutex
	Sent []adapter.SendMessageParams // every successful send, in order

	SendMessageFunc        func(ctx context.Context, params adapter.SendMessageParams) error
	GetBotMemberStatusFunc func(ctx context.Context, chatID int64) (string, error)
	GetChatFunc            func(ctx context.Context, chatID int64) (*adapter.ChatInfo, error)
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	if m.SendMessageFunc != nil {
		if err := m.SendMessageFunc(ctx, params); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, params)
	return nil
}

func (m *MockTelegramBot) GetBotMemberStatus(ctx context.Context, chatID int64) (string, error) {
	if m.GetBotMemberStatusFunc != nil {
		return m.GetBotMemberStatusFunc(ctx, chatID)
	}
	return adapter.MemberStatusAdministrator, nil
}

func (m *MockTelegramBot) GetChat(ctx context.Context, chatID int64) (*adapter.ChatInfo, error) {
	if m.GetChatFunc != nil {
		return m.GetChatFunc(ctx, chatID)
	}
	return &adapter.ChatInfo{ID: chatID, Type: "supergroup"}, nil
}

// SentTo returns the texts sent to chatID.
func (m *MockTelegramBot) SentTo(chatID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, p := range m.Sent {
		if p.ChatID == chatID {
			out = append(out, p.Text)
		}
	}
	return out
}

// ---- Mock CapabilityChecker ----

type MockCapability struct {
	Admin map[int64]bool
}

func (m *MockCapability) IsBotAdminIn(ctx context.Context, chatID int64) bool {
	return m.Admin[chatID]
}

// =============================
// Repositories
// =============================

// ---- Mock UserRepository (in-memory) ----

type MockUserRepo struct {
	mu    sync.Mutex
	users map[int64]*model.User

	CreateIfAbsentFunc func(ctx context.Context, tx repository.Tx, u *model.User) (bool, error)
	AddToWalletFunc    func(ctx context.Context, tx repository.Tx, id int64, delta int64) (bool, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo(seed ...*model.User) *MockUserRepo {
	m := &MockUserRepo{users: map[int64]*model.User{}}
	for _, u := range seed {
		cp := *u
		m.users[u.ID] = &cp
	}
	return m
}

func (m *MockUserRepo) CreateIfAbsent(ctx context.Context, tx repository.Tx, u *model.User) (bool, error) {
	if m.CreateIfAbsentFunc != nil {
		return m.CreateIfAbsentFunc(ctx, tx, u)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; ok {
		return false, nil
	}
	cp := *u
	m.users[u.ID] = &cp
	return true, nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) Activate(ctx context.Context, tx repository.Tx, id int64, plan string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Active, u.Plan, u.PlanExpiry = true, plan, &expiry
	return nil
}

func (m *MockUserRepo) AddToWallet(ctx context.Context, tx repository.Tx, id int64, delta int64) (bool, error) {
	if m.AddToWalletFunc != nil {
		return m.AddToWalletFunc(ctx, tx, id, delta)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return false, nil
	}
	u.Wallet += delta
	return true, nil
}

func (m *MockUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *MockUserRepo) CountActiveUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.users {
		if u.Active {
			n++
		}
	}
	return n, nil
}

func (m *MockUserRepo) ListExpiredActive(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, u := range m.users {
		if u.Active && u.Expired(now) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- Mock ReferralRepository (in-memory) ----

type MockReferralRepo struct {
	mu   sync.Mutex
	rows map[int64]*model.Referral
}

var _ repository.ReferralRepository = (*MockReferralRepo)(nil)

func NewMockReferralRepo() *MockReferralRepo {
	return &MockReferralRepo{rows: map[int64]*model.Referral{}}
}

func (m *MockReferralRepo) Create(ctx context.Context, tx repository.Tx, r *model.Referral) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[r.NewUserID]; !ok {
		cp := *r
		m.rows[r.NewUserID] = &cp
	}
	return nil
}

func (m *MockReferralRepo) FindByNewUserForUpdate(ctx context.Context, tx repository.Tx, newUserID int64) (*model.Referral, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[newUserID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MockReferralRepo) MarkCredited(ctx context.Context, tx repository.Tx, newUserID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[newUserID]
	if !ok {
		return domain.ErrNotFound
	}
	r.Credited = true
	return nil
}

func (m *MockReferralRepo) StatsByReferrer(ctx context.Context, tx repository.Tx, referrerID int64) (model.ReferralStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st model.ReferralStats
	for _, r := range m.rows {
		if r.ReferrerID == referrerID {
			st.Total++
			if r.Credited {
				st.Credited++
			}
		}
	}
	return st, nil
}

// ---- Mock MaterialRepository (in-memory) ----

type MockMaterialRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   []*model.Material
}

var _ repository.MaterialRepository = (*MockMaterialRepo)(nil)

func NewMockMaterialRepo() *MockMaterialRepo { return &MockMaterialRepo{} }

func (m *MockMaterialRepo) Save(ctx context.Context, tx repository.Tx, mat *model.Material) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	mat.ID = m.nextID
	cp := *mat
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *MockMaterialRepo) ListByUser(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Material, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Material
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].UserID == userID {
			cp := *m.rows[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockMaterialRepo) FindByID(ctx context.Context, tx repository.Tx, userID, id int64) (*model.Material, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockMaterialRepo) Delete(ctx context.Context, tx repository.Tx, userID int64, id *int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*model.Material
	var n int64
	for _, r := range m.rows {
		if r.UserID == userID && (id == nil || r.ID == *id) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

func (m *MockMaterialRepo) CountByUser(ctx context.Context, tx repository.Tx, userID int64) (int, error) {
	list, _ := m.ListByUser(ctx, tx, userID)
	return len(list), nil
}

// ---- Mock GroupRepository (in-memory) ----

type MockGroupRepo struct {
	mu     sync.Mutex
	groups map[int64]*model.Group
}

var _ repository.GroupRepository = (*MockGroupRepo)(nil)

func NewMockGroupRepo() *MockGroupRepo { return &MockGroupRepo{groups: map[int64]*model.Group{}} }

func (m *MockGroupRepo) Upsert(ctx context.Context, tx repository.Tx, g *model.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *g
	m.groups[g.ChatID] = &cp
	return nil
}

func (m *MockGroupRepo) Delete(ctx context.Context, tx repository.Tx, chatID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.groups[chatID]
	delete(m.groups, chatID)
	return ok, nil
}

func (m *MockGroupRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Group
	for _, g := range m.groups {
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *MockGroupRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.groups), nil
}

// ---- Mock SelectionRepository (in-memory) ----

type MockSelectionRepo struct {
	mu   sync.Mutex
	sets map[int64][]int64
}

var _ repository.SelectionRepository = (*MockSelectionRepo)(nil)

func NewMockSelectionRepo() *MockSelectionRepo { return &MockSelectionRepo{sets: map[int64][]int64{}} }

func (m *MockSelectionRepo) Get(ctx context.Context, tx repository.Tx, userID int64) (*model.Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.NewSelection(userID, m.sets[userID]...), nil
}

func (m *MockSelectionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Selection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[s.UserID] = s.GroupIDs()
	return nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- In-memory Locker ----

type MockLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func NewMockLocker() *MockLocker { return &MockLocker{held: map[string]string{}} }

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", domain.ErrLockHeld
	}
	l.held[key] = "tok-" + key
	return l.held[key], nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}

// =============================
// Helpers
// =============================

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func newTestTranslator() *i18n.Translator {
	translator, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		panic(err)
	}
	return translator
}

func mustUser(id int64, username string) *model.User {
	u, err := model.NewUser(id, username, username)
	if err != nil {
		panic(err)
	}
	return u
}

//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"

	"promo-bot/internal/domain"
	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/repository"
	"promo-bot/internal/usecase"
)

func TestUserUseCase_RegisterOrFetch(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	t.Run("should create once and be idempotent", func(t *testing.T) {
		users := NewMockUserRepo()
		uc := usecase.NewUserUseCase(users, NewMockReferralRepo(), &MockTxManager{}, logger)

		first, err := uc.RegisterOrFetch(ctx, 5, "alice", "Alice", "")
		if err != nil {
			t.Fatalf("RegisterOrFetch failed: %v", err)
		}
		second, err := uc.RegisterOrFetch(ctx, 5, "renamed", "Renamed", "REF9")
		if err != nil {
			t.Fatalf("second RegisterOrFetch failed: %v", err)
		}
		if second.Username != "alice" || second.ReferredBy != nil {
			t.Errorf("existing user must not change, got %+v", second)
		}
		if !first.JoinedAt.Equal(second.JoinedAt) {
			t.Error("join time changed on second call")
		}
		if n, _ := users.CountUsers(ctx, nil); n != 1 {
			t.Errorf("expected 1 user, got %d", n)
		}
	})

	t.Run("should record a referral from a valid code", func(t *testing.T) {
		refs := NewMockReferralRepo()
		uc := usecase.NewUserUseCase(NewMockUserRepo(), refs, &MockTxManager{}, logger)

		u, err := uc.RegisterOrFetch(ctx, 200, "bob", "Bob", "REF100")
		if err != nil {
			t.Fatalf("RegisterOrFetch failed: %v", err)
		}
		if u.ReferredBy == nil || *u.ReferredBy != 100 {
			t.Fatalf("expected referred_by 100, got %v", u.ReferredBy)
		}
		ref, err := refs.FindByNewUserForUpdate(ctx, nil, 200)
		if err != nil || ref.ReferrerID != 100 || ref.Credited {
			t.Fatalf("expected uncredited referral, got %+v %v", ref, err)
		}
	})

	t.Run("should ignore malformed codes and self-referral", func(t *testing.T) {
		refs := NewMockReferralRepo()
		uc := usecase.NewUserUseCase(NewMockUserRepo(), refs, &MockTxManager{}, logger)

		for id, code := range map[int64]string{300: "hello", 301: "REF301", 302: "REF0"} {
			u, err := uc.RegisterOrFetch(ctx, id, "", "", code)
			if err != nil {
				t.Fatalf("RegisterOrFetch(%q) failed: %v", code, err)
			}
			if u.ReferredBy != nil {
				t.Errorf("code %q should not set a referrer", code)
			}
			if _, err := refs.FindByNewUserForUpdate(ctx, nil, id); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("code %q should not create a referral", code)
			}
		}
	})

	t.Run("should run inside one transaction and surface failures", func(t *testing.T) {
		calls := 0
		tm := &MockTxManager{WithTxFunc: func(ctx context.Context, o pgx.TxOptions, fn func(context.Context, repository.Tx) error) error {
			calls++
			return fn(ctx, repository.NoTX)
		}}
		users := NewMockUserRepo()
		users.CreateIfAbsentFunc = func(ctx context.Context, tx repository.Tx, _ *model.User) (bool, error) {
			return false, errors.New("db down")
		}
		uc := usecase.NewUserUseCase(users, NewMockReferralRepo(), tm, logger)

		if _, err := uc.RegisterOrFetch(ctx, 1, "", "", ""); err == nil {
			t.Fatal("expected error")
		}
		if calls != 1 {
			t.Errorf("expected one transaction, got %d", calls)
		}
	})

	t.Run("should reject invalid ids", func(t *testing.T) {
		uc := usecase.NewUserUseCase(NewMockUserRepo(), NewMockReferralRepo(), &MockTxManager{}, logger)
		if _, err := uc.RegisterOrFetch(ctx, 0, "", "", ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestUserUseCase_Activate(t *testing.T) {
	ctx := context.Background()
	users := NewMockUserRepo(mustUser(7, "u7"))
	uc := usecase.NewUserUseCase(users, NewMockReferralRepo(), &MockTxManager{}, newTestLogger())

	t.Run("should set plan and expiry", func(t *testing.T) {
		before := time.Now().UTC()
		plan, expiry, err := uc.Activate(ctx, 7, "1M")
		if err != nil {
			t.Fatalf("Activate failed: %v", err)
		}
		if plan.Days != 30 {
			t.Errorf("expected 30 days, got %d", plan.Days)
		}
		want := before.AddDate(0, 0, 30)
		if expiry.Before(want.Add(-time.Second)) || expiry.After(want.Add(2*time.Second)) {
			t.Errorf("expiry %v not ~30 days from now", expiry)
		}
		u, _ := uc.Get(ctx, 7)
		if !u.Active || u.Plan != "1M" {
			t.Errorf("user not activated: %+v", u)
		}
	})

	t.Run("should reject unknown plan", func(t *testing.T) {
		if _, _, err := uc.Activate(ctx, 7, "2W"); !errors.Is(err, domain.ErrInvalidPlanCode) {
			t.Fatalf("expected ErrInvalidPlanCode, got %v", err)
		}
	})

	t.Run("should report unknown user", func(t *testing.T) {
		if _, _, err := uc.Activate(ctx, 8, "1W"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

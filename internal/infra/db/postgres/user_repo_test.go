//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"

	"promo-bot/internal/domain"
	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/repository"
)

func TestUserRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewUserRepo(testPool)
	ctx := context.Background()

	t.Run("CreateIfAbsent should be idempotent", func(t *testing.T) {
		cleanup(t)

		u, err := model.NewUser(123456789, "integration_user", "Integration")
		if err != nil {
			t.Fatalf("model.NewUser() failed: %v", err)
		}
		created, err := repo.CreateIfAbsent(ctx, nil, u)
		if err != nil || !created {
			t.Fatalf("expected first insert to create, got %v %v", created, err)
		}

		again, _ := model.NewUser(123456789, "other_name", "Other")
		created, err = repo.CreateIfAbsent(ctx, nil, again)
		if err != nil || created {
			t.Fatalf("expected second insert to be a no-op, got %v %v", created, err)
		}

		found, err := repo.FindByID(ctx, nil, 123456789)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if found.Username != "integration_user" || found.Wallet != 0 || found.Active {
			t.Errorf("unexpected stored user %+v", found)
		}
		if found.Plan != model.PlanNone || found.PlanExpiry != nil {
			t.Errorf("expected no plan, got %q %v", found.Plan, found.PlanExpiry)
		}
	})

	t.Run("FindByID should return ErrNotFound", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByID(ctx, nil, 42); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Activate and AddToWallet should update typed fields", func(t *testing.T) {
		cleanup(t)
		u, _ := model.NewUser(7, "u7", "Seven")
		if _, err := repo.CreateIfAbsent(ctx, nil, u); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		expiry := time.Now().UTC().Add(30 * 24 * time.Hour).Truncate(time.Second)
		if err := repo.Activate(ctx, nil, 7, "1M", expiry); err != nil {
			t.Fatalf("Activate failed: %v", err)
		}
		if err := repo.Activate(ctx, nil, 8, "1M", expiry); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound for unknown user, got %v", err)
		}

		ok, err := repo.AddToWallet(ctx, nil, 7, 10)
		if err != nil || !ok {
			t.Fatalf("AddToWallet failed: %v %v", ok, err)
		}
		ok, err = repo.AddToWallet(ctx, nil, 8, 10)
		if err != nil || ok {
			t.Fatalf("expected (false, nil) for unknown user, got %v %v", ok, err)
		}

		found, _ := repo.FindByID(ctx, nil, 7)
		if !found.Active || found.Plan != "1M" || found.Wallet != 10 {
			t.Errorf("unexpected user after updates %+v", found)
		}
		if found.PlanExpiry == nil || !found.PlanExpiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, found.PlanExpiry)
		}
	})

	t.Run("counts and expired listing", func(t *testing.T) {
		cleanup(t)
		now := time.Now().UTC()
		for _, id := range []int64{1, 2, 3} {
			u, _ := model.NewUser(id, "", "")
			_, _ = repo.CreateIfAbsent(ctx, nil, u)
		}
		_ = repo.Activate(ctx, nil, 1, "1W", now.Add(-time.Hour))
		_ = repo.Activate(ctx, nil, 2, "1Y", now.Add(time.Hour))

		total, _ := repo.CountUsers(ctx, nil)
		active, _ := repo.CountActiveUsers(ctx, nil)
		if total != 3 || active != 2 {
			t.Errorf("expected 3 total / 2 active, got %d / %d", total, active)
		}

		expired, err := repo.ListExpiredActive(ctx, nil, now)
		if err != nil {
			t.Fatalf("ListExpiredActive failed: %v", err)
		}
		if len(expired) != 1 || expired[0].ID != 1 {
			t.Errorf("expected only user 1 expired, got %+v", expired)
		}
	})

	t.Run("referral credit inside a transaction", func(t *testing.T) {
		cleanup(t)
		refs := NewReferralRepo(testPool)
		tm := NewTxManager(testPool)

		referrer, _ := model.NewUser(100, "ref", "Ref")
		_, _ = repo.CreateIfAbsent(ctx, nil, referrer)
		newbie, _ := model.NewUser(200, "new", "New")
		by := int64(100)
		newbie.ReferredBy = &by

		err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			if _, err := repo.CreateIfAbsent(ctx, tx, newbie); err != nil {
				return err
			}
			return refs.Create(ctx, tx, &model.Referral{NewUserID: 200, ReferrerID: 100, CreatedAt: time.Now()})
		})
		if err != nil {
			t.Fatalf("create tx failed: %v", err)
		}

		err = tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			ref, err := refs.FindByNewUserForUpdate(ctx, tx, 200)
			if err != nil {
				return err
			}
			if ref.Credited {
				t.Fatal("referral should start uncredited")
			}
			if _, err := repo.AddToWallet(ctx, tx, ref.ReferrerID, model.ReferralBonus); err != nil {
				return err
			}
			return refs.MarkCredited(ctx, tx, 200)
		})
		if err != nil {
			t.Fatalf("credit tx failed: %v", err)
		}

		got, _ := repo.FindByID(ctx, nil, 100)
		if got.Wallet != model.ReferralBonus {
			t.Errorf("expected wallet %d, got %d", model.ReferralBonus, got.Wallet)
		}
		st, err := refs.StatsByReferrer(ctx, nil, 100)
		if err != nil || st.Total != 1 || st.Credited != 1 {
			t.Errorf("unexpected stats %+v %v", st, err)
		}
		stored, _ := repo.FindByID(ctx, nil, 200)
		if stored.ReferredBy == nil || *stored.ReferredBy != 100 {
			t.Errorf("expected referred_by 100, got %v", stored.ReferredBy)
		}
	})

	t.Run("rolled back transaction leaves no rows", func(t *testing.T) {
		cleanup(t)
		tm := NewTxManager(testPool)
		boom := errors.New("boom")
		err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			u, _ := model.NewUser(5, "", "")
			if _, err := repo.CreateIfAbsent(ctx, tx, u); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if _, err := repo.FindByID(ctx, nil, 5); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected rollback, got %v", err)
		}
	})
}

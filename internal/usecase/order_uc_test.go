//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"examvault-membership/internal/config"
	"examvault-membership/internal/domain"
	"examvault-membership/internal/domain/model"
	"examvault-membership/internal/usecase"
)

var testPricing = config.PricingConfig{MonthlyCents: 2900, YearlyCents: 19900}

func TestOrderUseCase_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testLogger := newTestLogger()

	orderRepo := NewMockOrderRepo()
	uc := usecase.NewOrderUseCase(orderRepo, NewMockProfileRepo(), NewMockTxManager(), testPricing, fixedClock(now), testLogger)

	t.Run("pending order priced from config", func(t *testing.T) {
		o, err := uc.Create(ctx, "user-1", model.PlanYearly)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if o.Status != model.OrderStatusPending {
			t.Errorf("status = %s, want pending", o.Status)
		}
		if o.AmountCents != 19900 {
			t.Errorf("amount = %d, want 19900", o.AmountCents)
		}
		if o.PaymentMethod != model.PaymentMethodManualTransfer {
			t.Errorf("payment method = %q", o.PaymentMethod)
		}
		if o.PaidAt != nil || o.ExpiresAt != nil {
			t.Error("pending order must not carry paid_at/expires_at")
		}
	})

	t.Run("a second pending order is allowed", func(t *testing.T) {
		if _, err := uc.Create(ctx, "user-1", model.PlanMonthly); err != nil {
			t.Fatalf("second create: %v", err)
		}
		orders, _ := uc.ListByUser(ctx, "user-1")
		if len(orders) != 2 {
			t.Errorf("expected 2 orders, got %d", len(orders))
		}
	})

	t.Run("invalid plan rejected", func(t *testing.T) {
		if _, err := uc.Create(ctx, "user-1", model.PlanType("weekly")); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestOrderUseCase_Approve(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	testLogger := newTestLogger()

	t.Run("approval grants plan duration from now", func(t *testing.T) {
		orderRepo := NewMockOrderRepo()
		profileRepo := NewMockProfileRepo()
		uc := usecase.NewOrderUseCase(orderRepo, profileRepo, NewMockTxManager(), testPricing, fixedClock(now), testLogger)

		o, err := uc.Create(ctx, "user-1", model.PlanMonthly)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := uc.Approve(ctx, o.ID); err != nil {
			t.Fatalf("approve: %v", err)
		}

		got, _ := orderRepo.FindByID(ctx, nil, o.ID)
		if got.Status != model.OrderStatusPaid || got.PaidAt == nil {
			t.Errorf("order not paid: %+v", got)
		}
		p, err := profileRepo.FindByUserID(ctx, nil, "user-1")
		if err != nil {
			t.Fatalf("profile: %v", err)
		}
		want := now.Add(30 * day)
		if !p.IsVIP || p.VIPExpiresAt == nil || !p.VIPExpiresAt.Equal(want) {
			t.Errorf("profile expiry = %+v, want %v", p.VIPExpiresAt, want)
		}
		if got.ExpiresAt == nil || !got.ExpiresAt.Equal(want) {
			t.Errorf("order expires_at = %v, want %v", got.ExpiresAt, want)
		}
	})

	t.Run("yearly approval stacks onto remaining time", func(t *testing.T) {
		orderRepo := NewMockOrderRepo()
		profileRepo := NewMockProfileRepo()
		existing := now.Add(5 * day)
		profileRepo.store["user-1"] = &model.UserProfile{UserID: "user-1", IsVIP: true, VIPExpiresAt: &existing}
		uc := usecase.NewOrderUseCase(orderRepo, profileRepo, NewMockTxManager(), testPricing, fixedClock(now), testLogger)

		o, _ := uc.Create(ctx, "user-1", model.PlanYearly)
		if err := uc.Approve(ctx, o.ID); err != nil {
			t.Fatalf("approve: %v", err)
		}
		p, _ := profileRepo.FindByUserID(ctx, nil, "user-1")
		want := now.Add((5 + 365) * day)
		if p.VIPExpiresAt == nil || !p.VIPExpiresAt.Equal(want) {
			t.Errorf("expiry = %v, want %v (5 remaining + 365)", p.VIPExpiresAt, want)
		}
	})

	t.Run("second approval fails with InvalidState and grants once", func(t *testing.T) {
		orderRepo := NewMockOrderRepo()
		profileRepo := NewMockProfileRepo()
		uc := usecase.NewOrderUseCase(orderRepo, profileRepo, NewMockTxManager(), testPricing, fixedClock(now), testLogger)

		o, _ := uc.Create(ctx, "user-1", model.PlanMonthly)
		if err := uc.Approve(ctx, o.ID); err != nil {
			t.Fatalf("first approve: %v", err)
		}
		if err := uc.Approve(ctx, o.ID); !errors.Is(err, domain.ErrInvalidOrderState) {
			t.Fatalf("expected ErrInvalidOrderState, got %v", err)
		}
		p, _ := profileRepo.FindByUserID(ctx, nil, "user-1")
		if want := now.Add(30 * day); !p.VIPExpiresAt.Equal(want) {
			t.Errorf("profile affected more than once: %v", p.VIPExpiresAt)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		uc := usecase.NewOrderUseCase(NewMockOrderRepo(), NewMockProfileRepo(), NewMockTxManager(), testPricing, fixedClock(now), testLogger)
		if err := uc.Approve(ctx, "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})
}

func TestOrderUseCase_Cancel(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testLogger := newTestLogger()

	t.Run("cancel leaves profile untouched", func(t *testing.T) {
		orderRepo := NewMockOrderRepo()
		profileRepo := NewMockProfileRepo()
		uc := usecase.NewOrderUseCase(orderRepo, profileRepo, NewMockTxManager(), testPricing, fixedClock(now), testLogger)

		o, _ := uc.Create(ctx, "user-1", model.PlanMonthly)
		if err := uc.Cancel(ctx, o.ID); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		got, _ := orderRepo.FindByID(ctx, nil, o.ID)
		if got.Status != model.OrderStatusCancelled {
			t.Errorf("status = %s, want cancelled", got.Status)
		}
		if _, err := profileRepo.FindByUserID(ctx, nil, "user-1"); !errors.Is(err, domain.ErrNotFound) {
			t.Error("cancel must not create or mutate a profile")
		}
	})

	t.Run("cancel after approve fails with InvalidState", func(t *testing.T) {
		orderRepo := NewMockOrderRepo()
		uc := usecase.NewOrderUseCase(orderRepo, NewMockProfileRepo(), NewMockTxManager(), testPricing, fixedClock(now), testLogger)

		o, _ := uc.Create(ctx, "user-1", model.PlanMonthly)
		if err := uc.Approve(ctx, o.ID); err != nil {
			t.Fatalf("approve: %v", err)
		}
		if err := uc.Cancel(ctx, o.ID); !errors.Is(err, domain.ErrInvalidOrderState) {
			t.Fatalf("expected ErrInvalidOrderState, got %v", err)
		}
	})

	t.Run("double cancel fails with InvalidState", func(t *testing.T) {
		orderRepo := NewMockOrderRepo()
		uc := usecase.NewOrderUseCase(orderRepo, NewMockProfileRepo(), NewMockTxManager(), testPricing, fixedClock(now), testLogger)

		o, _ := uc.Create(ctx, "user-1", model.PlanMonthly)
		if err := uc.Cancel(ctx, o.ID); err != nil {
			t.Fatalf("first cancel: %v", err)
		}
		if err := uc.Cancel(ctx, o.ID); !errors.Is(err, domain.ErrInvalidOrderState) {
			t.Fatalf("expected ErrInvalidOrderState, got %v", err)
		}
	})
}

func TestOrderUseCase_ExpireStale(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testLogger := newTestLogger()

	orderRepo := NewMockOrderRepo()
	uc := usecase.NewOrderUseCase(orderRepo, NewMockProfileRepo(), NewMockTxManager(), testPricing, fixedClock(now), testLogger)

	stale := &model.VipOrder{ID: "o-stale", UserID: "user-1", PlanType: model.PlanMonthly,
		Status: model.OrderStatusPending, CreatedAt: now.Add(-96 * time.Hour)}
	fresh := &model.VipOrder{ID: "o-fresh", UserID: "user-1", PlanType: model.PlanMonthly,
		Status: model.OrderStatusPending, CreatedAt: now.Add(-time.Hour)}
	_ = orderRepo.Save(ctx, nil, stale)
	_ = orderRepo.Save(ctx, nil, fresh)

	n, err := uc.ExpireStale(ctx, 72*time.Hour)
	if err != nil {
		t.Fatalf("expire stale: %v", err)
	}
	if n != 1 {
		t.Errorf("expired %d orders, want 1", n)
	}
	got, _ := orderRepo.FindByID(ctx, nil, "o-stale")
	if got.Status != model.OrderStatusExpired {
		t.Errorf("stale order status = %s, want expired", got.Status)
	}
	got, _ = orderRepo.FindByID(ctx, nil, "o-fresh")
	if got.Status != model.OrderStatusPending {
		t.Errorf("fresh order status = %s, want pending", got.Status)
	}
}

func TestOrderUseCase_Stats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testLogger := newTestLogger()

	orderRepo := NewMockOrderRepo()
	profileRepo := NewMockProfileRepo()
	uc := usecase.NewOrderUseCase(orderRepo, profileRepo, NewMockTxManager(), testPricing, fixedClock(now), testLogger)

	a, _ := uc.Create(ctx, "user-1", model.PlanMonthly)
	_, _ = uc.Create(ctx, "user-2", model.PlanYearly)
	if err := uc.Approve(ctx, a.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	s, err := uc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if s.Pending != 1 || s.Paid != 1 || s.RevenueCentsTotal != 2900 {
		t.Errorf("stats = %+v", s)
	}
}

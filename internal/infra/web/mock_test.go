package web

import (
	"context"
	"sync"
	"time"

	"examvault-membership/internal/domain"
	"examvault-membership/internal/domain/model"
)

// --- Mock use cases ---

type mockCodeAdminUC struct {
	mu          sync.Mutex
	codes       []*model.InvitationCode
	CreateError error
	ListError   error
}

func (m *mockCodeAdminUC) Create(ctx context.Context, plan model.PlanType, maxUses int, expiresAt *time.Time, explicitToken string) (*model.InvitationCode, error) {
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	token := explicitToken
	if token == "" {
		token = "GENCODE1"
	}
	c := &model.InvitationCode{
		ID:        "code-1",
		Code:      model.NormalizeCode(token),
		PlanType:  plan,
		MaxUses:   maxUses,
		IsActive:  true,
		ExpiresAt: expiresAt,
	}
	m.codes = append(m.codes, c)
	return c, nil
}

func (m *mockCodeAdminUC) SetActive(ctx context.Context, codeID string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.ID == codeID {
			c.IsActive = active
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockCodeAdminUC) Delete(ctx context.Context, codeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.codes {
		if c.ID == codeID {
			m.codes = append(m.codes[:i], m.codes[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockCodeAdminUC) List(ctx context.Context) ([]*model.InvitationCode, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.InvitationCode, len(m.codes))
	copy(out, m.codes)
	return out, nil
}

type mockOrderUC struct {
	mu           sync.Mutex
	orders       []*model.VipOrder
	ApproveError error
	CancelError  error
	StatsResult  *model.OrderStats
}

func (m *mockOrderUC) Create(ctx context.Context, userID string, plan model.PlanType) (*model.VipOrder, error) {
	o := &model.VipOrder{ID: "order-1", UserID: userID, PlanType: plan, Status: model.OrderStatusPending}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, o)
	return o, nil
}

func (m *mockOrderUC) Approve(ctx context.Context, orderID string) error { return m.ApproveError }
func (m *mockOrderUC) Cancel(ctx context.Context, orderID string) error  { return m.CancelError }

func (m *mockOrderUC) List(ctx context.Context, status *model.OrderStatus) ([]*model.VipOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.VipOrder
	for _, o := range m.orders {
		if status == nil || o.Status == *status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderUC) ListByUser(ctx context.Context, userID string) ([]*model.VipOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.VipOrder
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderUC) Stats(ctx context.Context) (*model.OrderStats, error) {
	if m.StatsResult != nil {
		return m.StatsResult, nil
	}
	return &model.OrderStats{}, nil
}

func (m *mockOrderUC) ExpireStale(ctx context.Context, maxAge time.Duration) (int, error) {
	return 0, nil
}

//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"examvault-membership/internal/domain"
	"examvault-membership/internal/domain/model"
	"examvault-membership/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// MockTxManager runs the callback directly; mock repos apply mutations
// immediately, so tests assert observable outcomes rather than rollbacks.
type MockTxManager struct{}

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// --- profiles ---

type MockProfileRepo struct {
	mu    sync.Mutex
	store map[string]*model.UserProfile

	SaveFunc         func(ctx context.Context, tx repository.Tx, p *model.UserProfile) error
	FindByUserIDFunc func(ctx context.Context, tx repository.Tx, userID string) (*model.UserProfile, error)
}

func NewMockProfileRepo() *MockProfileRepo {
	return &MockProfileRepo{store: make(map[string]*model.UserProfile)}
}

func (m *MockProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.UserProfile) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.UserID] = &cp
	return nil
}

func (m *MockProfileRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.UserProfile, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, tx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProfileRepo) LockUser(ctx context.Context, tx repository.Tx, userID string) error {
	return nil
}

// --- invitation codes ---

type MockCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*model.InvitationCode          // by ID
	uses  map[string]map[string]struct{}            // codeID -> userID set
	saved []*model.InvitationCode

	FindByCodeFunc func(ctx context.Context, tx repository.Tx, code string) (*model.InvitationCode, error)
	SaveFunc       func(ctx context.Context, tx repository.Tx, c *model.InvitationCode) error
}

func NewMockCodeRepo() *MockCodeRepo {
	return &MockCodeRepo{
		codes: make(map[string]*model.InvitationCode),
		uses:  make(map[string]map[string]struct{}),
	}
}

func (m *MockCodeRepo) Save(ctx context.Context, tx repository.Tx, c *model.InvitationCode) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, c)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.codes {
		if id != c.ID && existing.Code == c.Code {
			return domain.ErrAlreadyExists
		}
	}
	cp := *c
	m.codes[c.ID] = &cp
	m.saved = append(m.saved, &cp)
	return nil
}

func (m *MockCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.InvitationCode, error) {
	if m.FindByCodeFunc != nil {
		return m.FindByCodeFunc(ctx, tx, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.InvitationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCodeRepo) List(ctx context.Context, tx repository.Tx) ([]*model.InvitationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.InvitationCode, 0, len(m.codes))
	for _, c := range m.codes {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockCodeRepo) SetActive(ctx context.Context, tx repository.Tx, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.IsActive = active
	return nil
}

func (m *MockCodeRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.codes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.codes, id)
	return nil
}

func (m *MockCodeRepo) HasUse(ctx context.Context, tx repository.Tx, codeID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.uses[codeID][userID]
	return ok, nil
}

func (m *MockCodeRepo) InsertUse(ctx context.Context, tx repository.Tx, use *model.InvitationCodeUse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.uses[use.CodeID]
	if !ok {
		set = make(map[string]struct{})
		m.uses[use.CodeID] = set
	}
	if _, dup := set[use.UserID]; dup {
		return domain.ErrCodeAlreadyUsed
	}
	set[use.UserID] = struct{}{}
	return nil
}

func (m *MockCodeRepo) ConsumeUse(ctx context.Context, tx repository.Tx, codeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[codeID]
	if !ok || !c.IsActive || c.UsedCount >= c.MaxUses {
		return domain.ErrCodeExhausted
	}
	c.UsedCount++
	return nil
}

func (m *MockCodeRepo) UsedCount(codeID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.codes[codeID]; ok {
		return c.UsedCount
	}
	return 0
}

// --- orders ---

type MockOrderRepo struct {
	mu    sync.Mutex
	store map[string]*model.VipOrder

	SaveFunc func(ctx context.Context, tx repository.Tx, o *model.VipOrder) error
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{store: make(map[string]*model.VipOrder)}
}

func (m *MockOrderRepo) Save(ctx context.Context, tx repository.Tx, o *model.VipOrder) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.store[o.ID] = &cp
	return nil
}

func (m *MockOrderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.VipOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.VipOrder, error) {
	return m.FindByID(ctx, tx, id)
}

func (m *MockOrderRepo) List(ctx context.Context, tx repository.Tx, status *model.OrderStatus) ([]*model.VipOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.VipOrder
	for _, o := range m.store {
		if status != nil && o.Status != *status {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockOrderRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.VipOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.VipOrder
	for _, o := range m.store {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockOrderRepo) ExpireStalePending(ctx context.Context, tx repository.Tx, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, o := range m.store {
		if o.Status == model.OrderStatusPending && o.CreatedAt.Before(cutoff) {
			o.Status = model.OrderStatusExpired
			n++
		}
	}
	return n, nil
}

func (m *MockOrderRepo) Stats(ctx context.Context, tx repository.Tx) (*model.OrderStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s model.OrderStats
	for _, o := range m.store {
		switch o.Status {
		case model.OrderStatusPending:
			s.Pending++
		case model.OrderStatusPaid:
			s.Paid++
			s.RevenueCentsTotal += o.AmountCents
		}
	}
	return &s, nil
}

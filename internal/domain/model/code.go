package model

import (
	"strings"
	"time"

	"examvault-membership/internal/domain"
)

// InvitationCode is a shareable grant redeemable a bounded number of times.
type InvitationCode struct {
	ID        string
	Code      string // stored upper-cased; lookup is case-insensitive
	PlanType  PlanType
	MaxUses   int
	UsedCount int
	IsActive  bool
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// NormalizeCode maps a user-supplied token to its canonical stored form.
func NormalizeCode(token string) string {
	return strings.ToUpper(strings.TrimSpace(token))
}

func NewInvitationCode(id, code string, plan PlanType, maxUses int, expiresAt *time.Time) (*InvitationCode, error) {
	code = NormalizeCode(code)
	if id == "" || code == "" || !plan.Valid() || maxUses <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &InvitationCode{
		ID:        id,
		Code:      code,
		PlanType:  plan,
		MaxUses:   maxUses,
		IsActive:  true,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// Redeemable checks every static precondition for redemption and returns the
// matching domain error. The per-user uniqueness check needs the use log and
// lives in the redemption use case.
func (c *InvitationCode) Redeemable(now time.Time) error {
	if c == nil || !c.IsActive {
		return domain.ErrCodeNotFound
	}
	if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
		return domain.ErrCodeExpired
	}
	if c.UsedCount >= c.MaxUses {
		return domain.ErrCodeExhausted
	}
	return nil
}

// InvitationCodeUse is an append-only record that a user consumed a code.
// The (CodeID, UserID) pair is unique; the storage constraint on that pair is
// what makes double redemption impossible.
type InvitationCodeUse struct {
	ID        string
	CodeID    string
	UserID    string
	CreatedAt time.Time
}

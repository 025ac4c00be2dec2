package model

import (
	"time"

	"examvault-membership/internal/domain"
)

// UserProfile is the single source of truth for "is this user entitled".
// Orders and code uses are historical records; only the profile answers
// entitlement questions.
type UserProfile struct {
	UserID       string
	IsVIP        bool
	VIPExpiresAt *time.Time // nil while IsVIP means unbounded (legacy grants)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewUserProfile(userID string) (*UserProfile, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &UserProfile{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
}

// IsEntitled reports whether the profile grants access at the given instant.
// This is the one entitlement predicate; every gate in the system goes
// through it.
func (p *UserProfile) IsEntitled(now time.Time) bool {
	if p == nil || !p.IsVIP {
		return false
	}
	if p.VIPExpiresAt == nil {
		return true
	}
	return now.Before(*p.VIPExpiresAt)
}

// ExtendExpiry computes the expiry after granting durationDays on top of the
// current one. If the current expiry is still in the future the grant stacks
// onto the remaining time; otherwise it starts fresh from now. Both the
// redemption path and order approval call this and nothing else.
func ExtendExpiry(current *time.Time, durationDays int, now time.Time) time.Time {
	d := time.Duration(durationDays) * 24 * time.Hour
	if current != nil && current.After(now) {
		return current.Add(d)
	}
	return now.Add(d)
}

package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"examvault-membership/internal/domain"
	"examvault-membership/internal/domain/model"
	"examvault-membership/internal/domain/ports/repository"
	"examvault-membership/internal/infra/metrics"
)

// Compile-time check
var _ EntitlementUseCase = (*entitlementUC)(nil)

// EntitlementUseCase answers "is this user currently entitled". Every page
// and content gate goes through IsEntitled; no caller re-implements the
// predicate.
type EntitlementUseCase interface {
	IsEntitled(ctx context.Context, userID string) (bool, error)
	// Profile returns the raw profile, or domain.ErrNotFound when the user
	// has never been granted anything.
	Profile(ctx context.Context, userID string) (*model.UserProfile, error)
}

type entitlementUC struct {
	profiles repository.ProfileRepository
	now      Clock
	log      *zerolog.Logger
}

func NewEntitlementUseCase(profiles repository.ProfileRepository, now Clock, logger *zerolog.Logger) *entitlementUC {
	l := logger.With().Str("component", "EntitlementUC").Logger()
	return &entitlementUC{profiles: profiles, now: now, log: &l}
}

func (u *entitlementUC) IsEntitled(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, domain.ErrInvalidArgument
	}
	p, err := u.profiles.FindByUserID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncEntitlementCheck(false)
			return false, nil
		}
		return false, err
	}
	entitled := p.IsEntitled(u.now())
	metrics.IncEntitlementCheck(entitled)
	return entitled, nil
}

func (u *entitlementUC) Profile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.profiles.FindByUserID(ctx, nil, userID)
}

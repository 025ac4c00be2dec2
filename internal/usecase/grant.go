package usecase

import (
	"context"
	"errors"
	"time"

	"examvault-membership/internal/domain"
	"examvault-membership/internal/domain/model"
	"examvault-membership/internal/domain/ports/repository"
	"examvault-membership/internal/infra/metrics"
)

// Clock supplies the current instant; all expiry math derives from it.
type Clock func() time.Time

// grantService is the single mutation path for VIP entitlement. Redemption
// and order approval both go through apply, so the extension rule can never
// diverge between the two channels.
type grantService struct {
	profiles repository.ProfileRepository
}

// apply extends the user's entitlement by the plan's duration and persists
// the profile. Must run inside a transaction that already holds the per-user
// lock; the profile read here is what the lock keeps consistent.
func (g *grantService) apply(ctx context.Context, tx repository.Tx, userID string, plan model.PlanType, source string, now time.Time) (time.Time, error) {
	p, err := g.profiles.FindByUserID(ctx, tx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		p, err = model.NewUserProfile(userID)
	}
	if err != nil {
		return time.Time{}, err
	}

	newExpiry := model.ExtendExpiry(p.VIPExpiresAt, plan.DurationDays(), now)
	p.IsVIP = true
	p.VIPExpiresAt = &newExpiry
	if err := g.profiles.Save(ctx, tx, p); err != nil {
		return time.Time{}, err
	}

	metrics.IncGrant(source, string(plan))
	return newExpiry, nil
}

package repository

import (
	"context"

	"examvault-membership/internal/domain/model"
)

// ProfileRepository persists user profiles. Profiles are upserted, never
// deleted, and only the grant paths mutate the VIP fields.
type ProfileRepository interface {
	Save(ctx context.Context, tx Tx, p *model.UserProfile) error
	// FindByUserID returns domain.ErrNotFound when no profile row exists yet.
	FindByUserID(ctx context.Context, tx Tx, userID string) (*model.UserProfile, error)
	// LockUser serializes all grants for one user for the duration of the
	// surrounding transaction.
	LockUser(ctx context.Context, tx Tx, userID string) error
}

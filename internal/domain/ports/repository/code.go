package repository

import (
	"context"

	"examvault-membership/internal/domain/model"
)

// InvitationCodeRepository manages invitation codes and their use log.
type InvitationCodeRepository interface {
	Save(ctx context.Context, tx Tx, code *model.InvitationCode) error
	// FindByCode looks up a code by its normalized token, active or not.
	// Returns domain.ErrNotFound when no row matches.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.InvitationCode, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.InvitationCode, error)
	List(ctx context.Context, tx Tx) ([]*model.InvitationCode, error)
	SetActive(ctx context.Context, tx Tx, id string, active bool) error
	Delete(ctx context.Context, tx Tx, id string) error

	// HasUse reports whether a use row exists for (codeID, userID).
	HasUse(ctx context.Context, tx Tx, codeID, userID string) (bool, error)
	// InsertUse appends a use row. Returns domain.ErrCodeAlreadyUsed when the
	// (code_id, user_id) uniqueness constraint rejects the insert; this is
	// the authoritative double-redemption guard, not HasUse.
	InsertUse(ctx context.Context, tx Tx, use *model.InvitationCodeUse) error
	// ConsumeUse increments used_count only while the code is active and has
	// a slot left. Returns domain.ErrCodeExhausted when the guarded update
	// matches no row.
	ConsumeUse(ctx context.Context, tx Tx, codeID string) error
}

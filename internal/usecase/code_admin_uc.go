package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"examvault-membership/internal/domain"
	"examvault-membership/internal/domain/model"
	"examvault-membership/internal/domain/ports/repository"
)

// Compile-time check
var _ CodeAdminUseCase = (*codeAdminUC)(nil)

// CodeAdminUseCase is the operator surface for invitation codes.
type CodeAdminUseCase interface {
	// Create stores a new code. With an empty explicitToken a random token is
	// generated; the unique index on code is the collision backstop either way.
	Create(ctx context.Context, plan model.PlanType, maxUses int, expiresAt *time.Time, explicitToken string) (*model.InvitationCode, error)
	SetActive(ctx context.Context, codeID string, active bool) error
	// Delete hard-deletes a code. Past grants made through it stand.
	Delete(ctx context.Context, codeID string) error
	List(ctx context.Context) ([]*model.InvitationCode, error)
}

type codeAdminUC struct {
	codes       repository.InvitationCodeRepository
	tokenLength int
	log         *zerolog.Logger
}

func NewCodeAdminUseCase(codes repository.InvitationCodeRepository, tokenLength int, logger *zerolog.Logger) *codeAdminUC {
	if tokenLength <= 0 {
		tokenLength = 8
	}
	l := logger.With().Str("component", "CodeAdminUC").Logger()
	return &codeAdminUC{codes: codes, tokenLength: tokenLength, log: &l}
}

func (u *codeAdminUC) Create(ctx context.Context, plan model.PlanType, maxUses int, expiresAt *time.Time, explicitToken string) (*model.InvitationCode, error) {
	if !plan.Valid() || maxUses <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	generated := explicitToken == ""
	token := explicitToken

	// A generated token colliding with an existing one is vanishingly rare
	// but cheap to retry; an explicit token collision is the operator's
	// mistake and surfaces as ErrAlreadyExists.
	for attempt := 0; attempt < 3; attempt++ {
		if generated {
			var err error
			token, err = generateInviteToken(u.tokenLength)
			if err != nil {
				return nil, err
			}
		}
		code, err := model.NewInvitationCode(uuid.NewString(), token, plan, maxUses, expiresAt)
		if err != nil {
			return nil, err
		}
		err = u.codes.Save(ctx, nil, code)
		if err == nil {
			u.log.Info().Str("code_id", code.ID).Str("plan", string(plan)).Int("max_uses", maxUses).Msg("invitation code created")
			return code, nil
		}
		if !generated || !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
	}
	return nil, domain.ErrAlreadyExists
}

func (u *codeAdminUC) SetActive(ctx context.Context, codeID string, active bool) error {
	if codeID == "" {
		return domain.ErrInvalidArgument
	}
	if err := u.codes.SetActive(ctx, nil, codeID, active); err != nil {
		return err
	}
	u.log.Info().Str("code_id", codeID).Bool("active", active).Msg("invitation code toggled")
	return nil
}

func (u *codeAdminUC) Delete(ctx context.Context, codeID string) error {
	if codeID == "" {
		return domain.ErrInvalidArgument
	}
	if err := u.codes.Delete(ctx, nil, codeID); err != nil {
		return err
	}
	u.log.Info().Str("code_id", codeID).Msg("invitation code deleted")
	return nil
}

func (u *codeAdminUC) List(ctx context.Context) ([]*model.InvitationCode, error) {
	return u.codes.List(ctx, nil)
}

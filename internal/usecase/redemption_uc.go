package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/jackc/pgx/v4"

	"examvault-membership/internal/domain"
	"examvault-membership/internal/domain/model"
	"examvault-membership/internal/domain/ports/repository"
	"examvault-membership/internal/infra/metrics"
)

// Compile-time check
var _ RedemptionUseCase = (*redemptionUC)(nil)

// RedemptionUseCase validates and applies invitation codes.
type RedemptionUseCase interface {
	// Validate checks a token for a user without mutating anything. Returns
	// the code on success, or one of ErrCodeNotFound / ErrCodeExpired /
	// ErrCodeExhausted / ErrCodeAlreadyUsed.
	Validate(ctx context.Context, token, userID string) (*model.InvitationCode, error)
	// Redeem consumes one use of the code for the user and returns the new
	// VIP expiry. All mutations commit atomically or not at all.
	Redeem(ctx context.Context, token, userID string) (time.Time, error)
}

type redemptionUC struct {
	codes    repository.InvitationCodeRepository
	orders   repository.OrderRepository
	profiles repository.ProfileRepository
	grants   grantService
	tm       repository.TransactionManager
	now      Clock
	log      *zerolog.Logger
}

func NewRedemptionUseCase(
	codes repository.InvitationCodeRepository,
	orders repository.OrderRepository,
	profiles repository.ProfileRepository,
	tm repository.TransactionManager,
	now Clock,
	logger *zerolog.Logger,
) *redemptionUC {
	l := logger.With().Str("component", "RedemptionUC").Logger()
	return &redemptionUC{
		codes:    codes,
		orders:   orders,
		profiles: profiles,
		grants:   grantService{profiles: profiles},
		tm:       tm,
		now:      now,
		log:      &l,
	}
}

func (u *redemptionUC) Validate(ctx context.Context, token, userID string) (*model.InvitationCode, error) {
	normalized := model.NormalizeCode(token)
	if normalized == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}

	code, err := u.codes.FindByCode(ctx, nil, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, err
	}
	if err := code.Redeemable(u.now()); err != nil {
		return nil, err
	}
	used, err := u.codes.HasUse(ctx, nil, code.ID, userID)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, domain.ErrCodeAlreadyUsed
	}
	return code, nil
}

func (u *redemptionUC) Redeem(ctx context.Context, token, userID string) (time.Time, error) {
	normalized := model.NormalizeCode(token)
	if normalized == "" || userID == "" {
		return time.Time{}, domain.ErrInvalidArgument
	}

	var newExpiry time.Time
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		now := u.now()

		// Serialize all grants for this user so the extension reads a
		// consistent current expiry.
		if err := u.profiles.LockUser(ctx, tx, userID); err != nil {
			return err
		}

		// Re-validate inside the transaction: the last remaining use, or a
		// deactivation, may have raced us between Validate and Redeem.
		code, err := u.codes.FindByCode(ctx, tx, normalized)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrCodeNotFound
			}
			return err
		}
		if err := code.Redeemable(now); err != nil {
			return err
		}

		newExpiry, err = u.grants.apply(ctx, tx, userID, code.PlanType, "code", now)
		if err != nil {
			return err
		}

		// The unique (code_id, user_id) index behind this insert is the
		// double-redemption guard; a conflict rolls back everything above.
		use := &model.InvitationCodeUse{CodeID: code.ID, UserID: userID, CreatedAt: now}
		if err := u.codes.InsertUse(ctx, tx, use); err != nil {
			return err
		}

		// Guarded increment; fails when another redemption took the last
		// slot after our read.
		if err := u.codes.ConsumeUse(ctx, tx, code.ID); err != nil {
			return err
		}

		// Zero-amount paid order for audit symmetry with purchased grants.
		audit, err := model.NewVipOrder(ulid.Make().String(), userID, code.PlanType, 0, model.PaymentMethodInvitationCode)
		if err != nil {
			return err
		}
		audit.Status = model.OrderStatusPaid
		audit.PaymentReference = normalized
		audit.PaidAt = &now
		audit.ExpiresAt = &newExpiry
		return u.orders.Save(ctx, tx, audit)
	})

	if err != nil {
		metrics.IncRedemption(redemptionResult(err))
		if isRedemptionError(err) {
			u.log.Debug().Err(err).Str("user_id", userID).Msg("redemption rejected")
		} else {
			u.log.Error().Err(err).Str("user_id", userID).Msg("redemption failed")
		}
		return time.Time{}, err
	}

	metrics.IncRedemption("ok")
	u.log.Info().Str("user_id", userID).Time("vip_expires_at", newExpiry).Msg("code redeemed")
	return newExpiry, nil
}

func isRedemptionError(err error) bool {
	return errors.Is(err, domain.ErrCodeNotFound) ||
		errors.Is(err, domain.ErrCodeExpired) ||
		errors.Is(err, domain.ErrCodeExhausted) ||
		errors.Is(err, domain.ErrCodeAlreadyUsed)
}

func redemptionResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrCodeNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrCodeExpired):
		return "expired"
	case errors.Is(err, domain.ErrCodeExhausted):
		return "exhausted"
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		return "already_used"
	default:
		return "error"
	}
}

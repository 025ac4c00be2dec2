package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"examvault-membership/internal/config"
	"examvault-membership/internal/domain"
	"examvault-membership/internal/domain/model"
	"examvault-membership/internal/domain/ports/repository"
	"examvault-membership/internal/infra/metrics"
)

// Compile-time check
var _ OrderUseCase = (*orderUC)(nil)

// OrderUseCase manages the VIP order lifecycle: pending -> {paid, cancelled}.
// Terminal states never regress. Approval is the paid twin of redemption and
// shares its grant path.
type OrderUseCase interface {
	Create(ctx context.Context, userID string, plan model.PlanType) (*model.VipOrder, error)
	Approve(ctx context.Context, orderID string) error
	Cancel(ctx context.Context, orderID string) error
	List(ctx context.Context, status *model.OrderStatus) ([]*model.VipOrder, error)
	ListByUser(ctx context.Context, userID string) ([]*model.VipOrder, error)
	Stats(ctx context.Context) (*model.OrderStats, error)
	// ExpireStale transitions pending orders older than maxAge to expired.
	ExpireStale(ctx context.Context, maxAge time.Duration) (int, error)
}

type orderUC struct {
	orders   repository.OrderRepository
	profiles repository.ProfileRepository
	grants   grantService
	tm       repository.TransactionManager
	pricing  config.PricingConfig
	now      Clock
	log      *zerolog.Logger
}

func NewOrderUseCase(
	orders repository.OrderRepository,
	profiles repository.ProfileRepository,
	tm repository.TransactionManager,
	pricing config.PricingConfig,
	now Clock,
	logger *zerolog.Logger,
) *orderUC {
	l := logger.With().Str("component", "OrderUC").Logger()
	return &orderUC{
		orders:   orders,
		profiles: profiles,
		grants:   grantService{profiles: profiles},
		tm:       tm,
		pricing:  pricing,
		now:      now,
		log:      &l,
	}
}

// Create inserts a pending order priced from config. No entitlement changes
// until an operator approves it. A user may hold several pending orders;
// creating a new one never cancels older ones.
func (u *orderUC) Create(ctx context.Context, userID string, plan model.PlanType) (*model.VipOrder, error) {
	if userID == "" || !plan.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	amount := u.pricing.AmountCents(plan == model.PlanYearly)
	o, err := model.NewVipOrder(ulid.Make().String(), userID, plan, amount, model.PaymentMethodManualTransfer)
	if err != nil {
		return nil, err
	}
	if err := u.orders.Save(ctx, nil, o); err != nil {
		return nil, err
	}
	metrics.IncOrderTransition(string(model.OrderStatusPending))
	u.log.Info().Str("order_id", o.ID).Str("user_id", userID).Str("plan", string(plan)).Msg("order created")
	return o, nil
}

// Approve marks a pending order paid and applies the grant, all in one
// transaction. The row lock on the order plus the per-user advisory lock
// make a racing approval or cancellation fail with ErrInvalidOrderState
// instead of double-granting.
func (u *orderUC) Approve(ctx context.Context, orderID string) error {
	if orderID == "" {
		return domain.ErrInvalidArgument
	}
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		o, err := u.orders.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o.Status != model.OrderStatusPending {
			return domain.ErrInvalidOrderState
		}

		if err := u.profiles.LockUser(ctx, tx, o.UserID); err != nil {
			return err
		}

		now := u.now()
		newExpiry, err := u.grants.apply(ctx, tx, o.UserID, o.PlanType, "order", now)
		if err != nil {
			return err
		}

		o.Status = model.OrderStatusPaid
		o.PaidAt = &now
		o.ExpiresAt = &newExpiry
		return u.orders.Save(ctx, tx, o)
	})
	if err != nil {
		return err
	}
	metrics.IncOrderTransition(string(model.OrderStatusPaid))
	u.log.Info().Str("order_id", orderID).Msg("order approved")
	return nil
}

// Cancel marks a pending order cancelled. The profile is untouched: an order
// that was never paid never granted anything.
func (u *orderUC) Cancel(ctx context.Context, orderID string) error {
	if orderID == "" {
		return domain.ErrInvalidArgument
	}
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		o, err := u.orders.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o.Status != model.OrderStatusPending {
			return domain.ErrInvalidOrderState
		}
		o.Status = model.OrderStatusCancelled
		return u.orders.Save(ctx, tx, o)
	})
	if err != nil {
		return err
	}
	metrics.IncOrderTransition(string(model.OrderStatusCancelled))
	u.log.Info().Str("order_id", orderID).Msg("order cancelled")
	return nil
}

func (u *orderUC) List(ctx context.Context, status *model.OrderStatus) ([]*model.VipOrder, error) {
	return u.orders.List(ctx, nil, status)
}

func (u *orderUC) ListByUser(ctx context.Context, userID string) ([]*model.VipOrder, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.orders.ListByUser(ctx, nil, userID)
}

func (u *orderUC) Stats(ctx context.Context) (*model.OrderStats, error) {
	return u.orders.Stats(ctx, nil)
}

func (u *orderUC) ExpireStale(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := u.now().Add(-maxAge)
	n, err := u.orders.ExpireStalePending(ctx, nil, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.IncOrdersExpired(n)
	}
	return n, nil
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"examvault-membership/internal/domain"
	"examvault-membership/internal/domain/model"
	"examvault-membership/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) repository.OrderRepository {
	return &orderRepo{pool: pool}
}

const orderColumns = `id, user_id, plan_type, amount_cents, status, payment_method, payment_reference, created_at, paid_at, expires_at`

func (r *orderRepo) Save(ctx context.Context, tx repository.Tx, o *model.VipOrder) error {
	const q = `
INSERT INTO vip_orders (id, user_id, plan_type, amount_cents, status, payment_method, payment_reference, created_at, paid_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  payment_method = EXCLUDED.payment_method,
  payment_reference = EXCLUDED.payment_reference,
  paid_at = EXCLUDED.paid_at,
  expires_at = EXCLUDED.expires_at;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		o.ID, o.UserID, string(o.PlanType), o.AmountCents, string(o.Status),
		o.PaymentMethod, o.PaymentReference, o.CreatedAt, o.PaidAt, o.ExpiresAt,
	)
	return err
}

func (r *orderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.VipOrder, error) {
	const q = `SELECT ` + orderColumns + ` FROM vip_orders WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	o, err := scanOrder(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	return o, err
}

func (r *orderRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.VipOrder, error) {
	const q = `SELECT ` + orderColumns + ` FROM vip_orders WHERE id = $1 FOR UPDATE;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	o, err := scanOrder(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	return o, err
}

func (r *orderRepo) List(ctx context.Context, tx repository.Tx, status *model.OrderStatus) ([]*model.VipOrder, error) {
	q := `SELECT ` + orderColumns + ` FROM vip_orders ORDER BY created_at DESC;`
	args := []interface{}{}
	if status != nil {
		q = `SELECT ` + orderColumns + ` FROM vip_orders WHERE status = $1 ORDER BY created_at DESC;`
		args = append(args, string(*status))
	}
	return r.queryOrders(ctx, tx, q, args...)
}

func (r *orderRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.VipOrder, error) {
	const q = `SELECT ` + orderColumns + ` FROM vip_orders WHERE user_id = $1 ORDER BY created_at DESC;`
	return r.queryOrders(ctx, tx, q, userID)
}

func (r *orderRepo) ExpireStalePending(ctx context.Context, tx repository.Tx, cutoff time.Time) (int, error) {
	const q = `
UPDATE vip_orders
   SET status = 'expired'
 WHERE status = 'pending' AND created_at < $1;
`
	tag, err := execSQL(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *orderRepo) Stats(ctx context.Context, tx repository.Tx) (*model.OrderStats, error) {
	const q = `
SELECT COUNT(*) FILTER (WHERE status = 'pending'),
       COUNT(*) FILTER (WHERE status = 'paid'),
       COALESCE(SUM(amount_cents) FILTER (WHERE status = 'paid'), 0)
  FROM vip_orders;
`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	var s model.OrderStats
	if err := row.Scan(&s.Pending, &s.Paid, &s.RevenueCentsTotal); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return &s, nil
}

func (r *orderRepo) queryOrders(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.VipOrder, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.VipOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*model.VipOrder, error) {
	var (
		o            model.VipOrder
		plan, status string
	)
	err := row.Scan(&o.ID, &o.UserID, &plan, &o.AmountCents, &status,
		&o.PaymentMethod, &o.PaymentReference, &o.CreatedAt, &o.PaidAt, &o.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	o.PlanType = model.PlanType(plan)
	o.Status = model.OrderStatus(status)
	return &o, nil
}

package repository

import (
	"context"
	"time"

	"examvault-membership/internal/domain/model"
)

// OrderRepository persists VIP orders.
type OrderRepository interface {
	Save(ctx context.Context, tx Tx, o *model.VipOrder) error
	// FindByID returns domain.ErrOrderNotFound when no such order exists.
	FindByID(ctx context.Context, tx Tx, id string) (*model.VipOrder, error)
	// FindByIDForUpdate row-locks the order for the duration of the
	// surrounding transaction so concurrent lifecycle transitions serialize.
	FindByIDForUpdate(ctx context.Context, tx Tx, id string) (*model.VipOrder, error)
	// List returns orders newest-first, optionally filtered by status.
	List(ctx context.Context, tx Tx, status *model.OrderStatus) ([]*model.VipOrder, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.VipOrder, error)
	// ExpireStalePending transitions pending orders created before the cutoff
	// to expired and returns how many rows changed.
	ExpireStalePending(ctx context.Context, tx Tx, cutoff time.Time) (int, error)
	Stats(ctx context.Context, tx Tx) (*model.OrderStats, error)
}

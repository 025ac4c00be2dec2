package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"examvault-membership/internal/usecase"
)

// OrderSweeper periodically expires stale pending orders via the use case.
type OrderSweeper struct {
	interval time.Duration
	maxAge   time.Duration
	orderUC  usecase.OrderUseCase
	log      *zerolog.Logger
}

func NewOrderSweeper(interval, maxAge time.Duration, orderUC usecase.OrderUseCase, logger *zerolog.Logger) *OrderSweeper {
	swLog := logger.With().Str("component", "OrderSweeper").Logger()
	return &OrderSweeper{
		interval: interval,
		maxAge:   maxAge,
		orderUC:  orderUC,
		log:      &swLog,
	}
}

func (w *OrderSweeper) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting order sweeper")
	// Run once on startup, then on every tick
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping order sweeper")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *OrderSweeper) sweep(ctx context.Context) {
	n, err := w.orderUC.ExpireStale(ctx, w.maxAge)
	if err != nil {
		w.log.Error().Err(err).Msg("order sweep failed")
		return
	}
	if n > 0 {
		w.log.Info().Int("count", n).Msg("stale pending orders expired")
	}
}

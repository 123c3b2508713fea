package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/domain/ports/repository"
	"corpdata-commerce/internal/usecase"
)

const reconcileLockKey = "jobs:payment_reconcile"

// ReconcileWorker periodically re-polls the gateway for orders stuck in a
// non-terminal status. Abandoned checkouts settle into FAILED and payments
// whose callback was lost settle into PAID, with fulfillment, through the
// same confirmation path the callback uses.
type ReconcileWorker struct {
	interval time.Duration
	after    time.Duration
	orders   repository.OrderRepository
	confirm  *usecase.PaymentConfirmUseCase
	lock     Locker
	log      *zerolog.Logger
}

func NewReconcileWorker(interval, after time.Duration, orders repository.OrderRepository, confirm *usecase.PaymentConfirmUseCase, lock Locker, logger *zerolog.Logger) *ReconcileWorker {
	compLog := logger.With().Str("component", "ReconcileWorker").Logger()
	return &ReconcileWorker{
		interval: interval,
		after:    after,
		orders:   orders,
		confirm:  confirm,
		lock:     lock,
		log:      &compLog,
	}
}

func (w *ReconcileWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting payment reconcile worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping payment reconcile worker")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ReconcileWorker) runOnce(ctx context.Context) {
	if err := w.lock.Acquire(ctx, reconcileLockKey); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			w.log.Error().Err(err).Msg("reconcile lock error")
		}
		return
	}
	defer func() { _ = w.lock.Release(ctx, reconcileLockKey) }()

	stale, err := w.orders.ListStaleUnsettled(ctx, nil, time.Now().Add(-w.after), 100)
	if err != nil {
		w.log.Error().Err(err).Msg("list stale orders failed")
		return
	}
	for _, o := range stale {
		res, err := w.confirm.Confirm(ctx, o.GatewayOrderID, "reconciler")
		if err != nil {
			w.log.Warn().Err(err).Str("order_id", o.ID).Msg("reconcile confirm failed")
			continue
		}
		w.log.Info().Str("order_id", o.ID).Str("status", string(res.OrderStatus)).Msg("order reconciled")
	}
}

package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/usecase"
)

const accountingLockKey = "jobs:accounting_sync"

// AccountingWorker pushes paid, uninvoiced orders to the books on a long
// interval. Each run gets a fresh sync session, so a failed order is retried
// on the next run but never within the same one.
type AccountingWorker struct {
	interval time.Duration
	sync     *usecase.AccountingSyncUseCase
	lock     Locker
	log      *zerolog.Logger
}

func NewAccountingWorker(interval time.Duration, sync *usecase.AccountingSyncUseCase, lock Locker, logger *zerolog.Logger) *AccountingWorker {
	compLog := logger.With().Str("component", "AccountingWorker").Logger()
	return &AccountingWorker{
		interval: interval,
		sync:     sync,
		lock:     lock,
		log:      &compLog,
	}
}

func (w *AccountingWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting accounting sync worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping accounting sync worker")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *AccountingWorker) runOnce(ctx context.Context) {
	if err := w.lock.Acquire(ctx, accountingLockKey); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			w.log.Error().Err(err).Msg("accounting lock error")
		}
		return
	}
	defer func() { _ = w.lock.Release(ctx, accountingLockKey) }()

	sess := usecase.NewSyncSession()
	if err := w.sync.SyncInvoices(ctx, sess, 50, 2*time.Second); err != nil {
		w.log.Error().Err(err).Msg("accounting sync failed")
	}
	if sess.Synced > 0 || sess.Failed > 0 {
		w.log.Info().Int("synced", sess.Synced).Int("failed", sess.Failed).Msg("accounting sync finished")
	}
}

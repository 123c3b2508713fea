package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/infra/worker"
	"corpdata-commerce/internal/usecase"
)

const outboxLockKey = "jobs:outbox_dispatch"

// OutboxWorker drains pending notification events on a short interval.
// Delivery runs on the shared worker pool so a slow provider never blocks
// the ticker.
type OutboxWorker struct {
	interval   time.Duration
	batch      int
	dispatcher *usecase.OutboxDispatcher
	lock       Locker
	pool       *worker.Pool
	log        *zerolog.Logger
}

func NewOutboxWorker(interval time.Duration, batch int, dispatcher *usecase.OutboxDispatcher, lock Locker, pool *worker.Pool, logger *zerolog.Logger) *OutboxWorker {
	compLog := logger.With().Str("component", "OutboxWorker").Logger()
	return &OutboxWorker{
		interval:   interval,
		batch:      batch,
		dispatcher: dispatcher,
		lock:       lock,
		pool:       pool,
		log:        &compLog,
	}
}

func (w *OutboxWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting outbox worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping outbox worker")
			return ctx.Err()
		case <-ticker.C:
			_ = w.pool.Submit(func(ctx context.Context) error {
				w.drain(ctx)
				return nil
			})
		}
	}
}

func (w *OutboxWorker) drain(ctx context.Context) {
	if err := w.lock.Acquire(ctx, outboxLockKey); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			w.log.Error().Err(err).Msg("outbox lock error")
		}
		return
	}
	defer func() { _ = w.lock.Release(ctx, outboxLockKey) }()

	sent, err := w.dispatcher.Dispatch(ctx, w.batch)
	if err != nil {
		w.log.Error().Err(err).Msg("outbox dispatch failed")
	}
	if sent > 0 {
		w.log.Info().Int("count", sent).Msg("outbox events dispatched")
	}
}

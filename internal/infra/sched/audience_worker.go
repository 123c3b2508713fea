package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/usecase"
)

const audienceLockKey = "jobs:audience_resync"

// AudienceWorker runs the periodic full audience resync that repairs drift
// the incremental outbox tagging missed.
type AudienceWorker struct {
	interval time.Duration
	sync     *usecase.AudienceSyncUseCase
	lock     Locker
	log      *zerolog.Logger
}

func NewAudienceWorker(interval time.Duration, sync *usecase.AudienceSyncUseCase, lock Locker, logger *zerolog.Logger) *AudienceWorker {
	compLog := logger.With().Str("component", "AudienceWorker").Logger()
	return &AudienceWorker{
		interval: interval,
		sync:     sync,
		lock:     lock,
		log:      &compLog,
	}
}

func (w *AudienceWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting audience resync worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping audience resync worker")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *AudienceWorker) runOnce(ctx context.Context) {
	if err := w.lock.Acquire(ctx, audienceLockKey); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			w.log.Error().Err(err).Msg("audience lock error")
		}
		return
	}
	defer func() { _ = w.lock.Release(ctx, audienceLockKey) }()

	sess := usecase.NewSyncSession()
	if err := w.sync.Resync(ctx, sess, 100, time.Second); err != nil {
		w.log.Error().Err(err).Msg("audience resync failed")
	}
	if sess.Synced > 0 || sess.Failed > 0 {
		w.log.Info().Int("synced", sess.Synced).Int("failed", sess.Failed).Msg("audience resync finished")
	}
}

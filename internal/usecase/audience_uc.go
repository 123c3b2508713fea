// File: internal/usecase/audience_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/domain/model"
	"corpdata-commerce/internal/domain/ports/adapter"
	"corpdata-commerce/internal/domain/ports/repository"
)

// AudienceSyncUseCase re-tags active subscribers in the marketing audience
// (trial vs fullplan). The incremental path runs through outbox events at
// payment time; this is the periodic full resync that repairs drift.
type AudienceSyncUseCase struct {
	subs     repository.SubscriptionRepository
	orders   repository.OrderRepository
	audience adapter.AudienceSync
	log      *zerolog.Logger
}

func NewAudienceSyncUseCase(subs repository.SubscriptionRepository, orders repository.OrderRepository, audience adapter.AudienceSync, logger *zerolog.Logger) *AudienceSyncUseCase {
	compLog := logger.With().Str("component", "AudienceSyncUseCase").Logger()
	return &AudienceSyncUseCase{subs: subs, orders: orders, audience: audience, log: &compLog}
}

// Resync walks active subscriptions in pages, tagging each subscriber once
// per session. Per-contact failures are logged and skipped.
func (uc *AudienceSyncUseCase) Resync(ctx context.Context, sess *SyncSession, pageSize int, pause time.Duration) error {
	if pageSize <= 0 {
		pageSize = 100
	}
	for offset := 0; ; offset += pageSize {
		page, err := uc.subs.ListActive(ctx, nil, pageSize, offset)
		if err != nil {
			return fmt.Errorf("list active subscriptions: %w", err)
		}
		if len(page) == 0 {
			return nil
		}

		for _, sub := range page {
			if sess.Seen(sub.UserID) {
				continue
			}
			email, err := uc.contactEmail(ctx, sub)
			if err != nil {
				uc.log.Warn().Err(err).Str("subscription_id", sub.ID).Msg("resolve contact failed")
				sess.MarkFailed(sub.UserID)
				continue
			}
			tag := AudienceTagFullPlan
			if sub.IsTrial() {
				tag = AudienceTagTrial
			}
			if err := uc.audience.TagContact(ctx, email, tag); err != nil {
				uc.log.Warn().Err(err).Str("subscription_id", sub.ID).Msg("audience tag failed")
				sess.MarkFailed(sub.UserID)
				continue
			}
			sess.MarkSynced(sub.UserID)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pause):
		}
	}
}

// contactEmail resolves the subscriber's email from the order that bought
// the subscription.
func (uc *AudienceSyncUseCase) contactEmail(ctx context.Context, sub *model.Subscription) (string, error) {
	o, err := uc.orders.FindByID(ctx, nil, sub.OrderID)
	if err != nil {
		return "", err
	}
	if o.CustomerEmail == "" {
		return "", domain.ErrNotFound
	}
	return o.CustomerEmail, nil
}

package repository

import (
	"context"

	"corpdata-commerce/internal/domain/model"
)

// SubscriptionRepository stores subscriptions. Create relies on a unique
// constraint on order_id: a duplicate insert surfaces domain.ErrConflict,
// which fulfillment treats as success (the subscription already exists).
type SubscriptionRepository interface {
	Create(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByOrderID(ctx context.Context, tx Tx, orderID string) (*model.Subscription, error)
	FindActiveByUser(ctx context.Context, tx Tx, userID string) ([]*model.Subscription, error)
	ListActive(ctx context.Context, tx Tx, limit, offset int) ([]*model.Subscription, error)
}

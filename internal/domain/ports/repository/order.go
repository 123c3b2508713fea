package repository

import (
	"context"
	"time"

	"corpdata-commerce/internal/domain/model"
)

// OrderRepository stores domain orders. All methods are transaction-aware:
// inside a transaction FindByGatewayOrderID takes a row lock, which serializes
// concurrent confirmation attempts against the same order.
type OrderRepository interface {
	Create(ctx context.Context, tx Tx, o *model.Order) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Order, error)
	FindByGatewayOrderID(ctx context.Context, tx Tx, gatewayOrderID string) (*model.Order, error)
	Save(ctx context.Context, tx Tx, o *model.Order) error

	// Coupon eligibility lookups.
	CountPaidByUser(ctx context.Context, tx Tx, userID string) (int, error)
	CountPaidByUserAndCoupon(ctx context.Context, tx Tx, userID, couponCode string) (int, error)

	// Background job scans.
	ListStaleUnsettled(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Order, error)
	ListPaidUninvoiced(ctx context.Context, tx Tx, limit int) ([]*model.Order, error)
	SetInvoice(ctx context.Context, tx Tx, orderID, invoiceNumber string, invoicedAt time.Time) error
}

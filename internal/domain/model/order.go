package model

import (
	"time"

	"github.com/shopspring/decimal"

	"corpdata-commerce/internal/domain"
)

type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "CREATED"
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
	OrderStatusFailed  OrderStatus = "FAILED"
	OrderStatusUnknown OrderStatus = "UNKNOWN"
)

// Order is the domain order aggregate. Value is pre-tax post-discount; Value
// plus GST is the amount charged and must match what the gateway reports paid.
// Fulfillment side effects are gated by IsProcessed and fire at most once.
type Order struct {
	ID     string // ULID, time-sortable
	UserID string

	Items          []VerifiedOrderItem
	Currency       string
	Value          decimal.Decimal
	GST            decimal.Decimal
	DiscountAmount decimal.Decimal
	Coupon         *AppliedCoupon

	// Contact details captured at checkout, used for confirmation
	// notifications after payment.
	CustomerEmail string
	CustomerPhone string

	Status         OrderStatus
	PaymentID      *string
	GatewayOrderID string
	Gateway        string // provider name, e.g. "cashfree"
	IsProcessed    bool

	InvoiceNumber *string
	InvoicedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalPrice is the charged amount: value plus tax.
func (o *Order) TotalPrice() decimal.Decimal {
	return o.Value.Add(o.GST)
}

// Transition moves the order to next. Transitions are forward-only except that
// PENDING and UNKNOWN may be re-polled into any terminal state.
func (o *Order) Transition(next OrderStatus) error {
	if o.Status == next {
		return nil
	}
	switch o.Status {
	case OrderStatusCreated, OrderStatusPending, OrderStatusUnknown:
		o.Status = next
		o.UpdatedAt = time.Now()
		return nil
	default:
		// PAID and FAILED are terminal for this flow.
		return domain.ErrConflict
	}
}

// ServiceIDs lists the distinct service ids across the verified items.
func (o *Order) ServiceIDs() []string {
	seen := make(map[string]struct{}, len(o.Items))
	out := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		if _, ok := seen[it.ServiceID]; ok {
			continue
		}
		seen[it.ServiceID] = struct{}{}
		out = append(out, it.ServiceID)
	}
	return out
}

package adapter

import (
	"context"

	"github.com/shopspring/decimal"
)

// GatewayOrderStatus is the provider's view of a checkout session.
type GatewayOrderStatus string

const (
	GatewayOrderPaid    GatewayOrderStatus = "PAID"
	GatewayOrderActive  GatewayOrderStatus = "ACTIVE" // created/attempted but unpaid
	GatewayOrderExpired GatewayOrderStatus = "EXPIRED"
	GatewayOrderUnknown GatewayOrderStatus = "UNKNOWN"
)

// GatewayPaymentSuccess is the normalized status of a settled payment entry.
const GatewayPaymentSuccess = "SUCCESS"

// GatewayCustomer identifies the paying customer to the provider.
type GatewayCustomer struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// OrderSession is the provider's checkout session handle.
type OrderSession struct {
	GatewayOrderID string
	SessionID      string
	PaymentLink    string
}

// GatewayPayment is one payment attempt against a gateway order.
type GatewayPayment struct {
	PaymentID string
	Status    string // normalized: SUCCESS / FAILED / PENDING
	Amount    decimal.Decimal
}

// PaymentGateway is the hex port for payment providers (Cashfree/Razorpay
// shaped). FetchOrderStatus is the authoritative truth during confirmation;
// the client-reported result is never trusted.
type PaymentGateway interface {
	Name() string
	CreateOrderSession(ctx context.Context, orderID string, amount decimal.Decimal, currency string, customer GatewayCustomer, returnURL string) (*OrderSession, error)
	FetchOrderStatus(ctx context.Context, gatewayOrderID string) (GatewayOrderStatus, error)
	FetchPayments(ctx context.Context, gatewayOrderID string) ([]GatewayPayment, error)
}

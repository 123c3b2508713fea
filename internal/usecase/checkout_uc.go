// File: internal/usecase/checkout_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/domain/model"
	"corpdata-commerce/internal/domain/ports/adapter"
	"corpdata-commerce/internal/domain/ports/repository"
	"corpdata-commerce/internal/infra/metrics"
)

// CheckoutResult pairs the persisted order with the gateway session the
// client needs to pay.
type CheckoutResult struct {
	Order   *model.Order
	Session *adapter.OrderSession
}

// CheckoutUseCase turns a verified cart into a pending order and a payment
// session. The order is persisted in CREATED; only the payment confirmation
// flow mutates it afterwards.
type CheckoutUseCase struct {
	cart    *CartCalculator
	orders  repository.OrderRepository
	gateway adapter.PaymentGateway
	log     *zerolog.Logger
}

func NewCheckoutUseCase(cart *CartCalculator, orders repository.OrderRepository, gateway adapter.PaymentGateway, logger *zerolog.Logger) *CheckoutUseCase {
	compLog := logger.With().Str("component", "CheckoutUseCase").Logger()
	return &CheckoutUseCase{cart: cart, orders: orders, gateway: gateway, log: &compLog}
}

// PlaceOrder verifies the cart, persists the order, and opens a gateway
// session for the grand total.
func (uc *CheckoutUseCase) PlaceOrder(ctx context.Context, userID string, customer adapter.GatewayCustomer, items []model.CartItem, currency, couponCode, returnURL string) (*CheckoutResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id: %w", domain.ErrInvalidArgument)
	}

	totals, err := uc.cart.Calculate(ctx, nil, items, currency, userID, couponCode)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &model.Order{
		ID:             ulid.Make().String(),
		UserID:         userID,
		Items:          totals.Items,
		Currency:       currency,
		Value:          totals.Value,
		GST:            totals.GST,
		DiscountAmount: totals.Discount,
		Coupon:         totals.Coupon,
		CustomerEmail:  customer.Email,
		CustomerPhone:  customer.Phone,
		Status:         model.OrderStatusCreated,
		Gateway:        uc.gateway.Name(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	session, err := uc.gateway.CreateOrderSession(ctx, order.ID, order.TotalPrice(), currency, customer, returnURL)
	if err != nil {
		return nil, fmt.Errorf("create gateway session: %w", err)
	}
	order.GatewayOrderID = session.GatewayOrderID

	if err := uc.orders.Create(ctx, nil, order); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	metrics.IncOrderCreated(currency)
	uc.log.Info().
		Str("order_id", order.ID).
		Str("gateway_order_id", order.GatewayOrderID).
		Str("total", order.TotalPrice().String()).
		Msg("order created")

	return &CheckoutResult{Order: order, Session: session}, nil
}

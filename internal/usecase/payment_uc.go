// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/domain/model"
	"corpdata-commerce/internal/domain/ports/adapter"
	"corpdata-commerce/internal/domain/ports/repository"
	"corpdata-commerce/internal/infra/metrics"
)

const unlockCreditExpiryDays = 365

// Audience tags applied to subscription buyers.
const (
	AudienceTagTrial    = "trial"
	AudienceTagFullPlan = "fullplan"
)

// ConfirmResult is what the caller (callback handler, reconciler) gets back.
// Repeated confirmation of a processed order returns the identical result.
type ConfirmResult struct {
	Message     string
	OrderStatus model.OrderStatus
	PaymentID   string
	TotalAmount decimal.Decimal
}

// PaymentConfirmUseCase turns a confirmed gateway payment into domain side
// effects exactly once per order. Everything runs inside one transaction:
// gateway truth fetch, order row lock, fulfillment, order mutation, coupon
// counter commit, and outbox enqueue. Any error aborts the whole transaction,
// leaving the order unchanged and safe to re-poll.
type PaymentConfirmUseCase struct {
	orders  repository.OrderRepository
	subs    repository.SubscriptionRepository
	credits repository.CreditRepository
	unlocks repository.UnlockRepository
	coupons repository.CouponRepository
	outbox  repository.OutboxRepository
	gateway adapter.PaymentGateway
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewPaymentConfirmUseCase(
	orders repository.OrderRepository,
	subs repository.SubscriptionRepository,
	credits repository.CreditRepository,
	unlocks repository.UnlockRepository,
	coupons repository.CouponRepository,
	outbox repository.OutboxRepository,
	gateway adapter.PaymentGateway,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *PaymentConfirmUseCase {
	compLog := logger.With().Str("component", "PaymentConfirmUseCase").Logger()
	return &PaymentConfirmUseCase{
		orders:  orders,
		subs:    subs,
		credits: credits,
		unlocks: unlocks,
		coupons: coupons,
		outbox:  outbox,
		gateway: gateway,
		tm:      tm,
		log:     &compLog,
	}
}

// Confirm re-fetches authoritative gateway status for the order and applies
// the matching state transition. PAID is terminal and idempotent; PENDING
// stays re-pollable; EXPIRED maps to FAILED; anything else to UNKNOWN.
func (uc *PaymentConfirmUseCase) Confirm(ctx context.Context, gatewayOrderID, actingUserID string) (*ConfirmResult, error) {
	if gatewayOrderID == "" {
		return nil, fmt.Errorf("gateway order id: %w", domain.ErrInvalidArgument)
	}

	var result *ConfirmResult
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		status, err := uc.gateway.FetchOrderStatus(ctx, gatewayOrderID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrOrderNotFound
			}
			return fmt.Errorf("fetch gateway status: %w", err)
		}

		order, err := uc.orders.FindByGatewayOrderID(ctx, tx, gatewayOrderID)
		if err != nil {
			return err
		}

		// Idempotency guard against duplicate webhook/poll delivery: a
		// processed order is a no-op returning the prior outcome.
		if order.IsProcessed {
			result = priorResult(order)
			return nil
		}

		switch status {
		case adapter.GatewayOrderPaid:
			result, err = uc.settlePaid(ctx, tx, order)
			return err
		case adapter.GatewayOrderActive:
			if err := order.Transition(model.OrderStatusPending); err != nil {
				return err
			}
			order.PaymentID = nil
			if err := uc.orders.Save(ctx, tx, order); err != nil {
				return err
			}
			result = &ConfirmResult{
				Message:     "payment pending at gateway",
				OrderStatus: order.Status,
				TotalAmount: order.TotalPrice(),
			}
			return nil
		case adapter.GatewayOrderExpired:
			if err := order.Transition(model.OrderStatusFailed); err != nil {
				return err
			}
			if err := uc.orders.Save(ctx, tx, order); err != nil {
				return err
			}
			result = &ConfirmResult{
				Message:     "gateway order expired",
				OrderStatus: order.Status,
				TotalAmount: order.TotalPrice(),
			}
			return nil
		default:
			if err := order.Transition(model.OrderStatusUnknown); err != nil {
				return err
			}
			if err := uc.orders.Save(ctx, tx, order); err != nil {
				return err
			}
			result = &ConfirmResult{
				Message:     "gateway reported unrecognized order state",
				OrderStatus: order.Status,
				TotalAmount: order.TotalPrice(),
			}
			return nil
		}
	})
	if err != nil {
		if isDomainErr(err) {
			return nil, err
		}
		uc.log.Error().Err(err).Str("gateway_order_id", gatewayOrderID).Msg("confirm failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}

	metrics.IncPaymentConfirm(string(result.OrderStatus))
	return result, nil
}

// settlePaid runs the success branch: pick the settled payment, fulfill every
// item, mark the order paid, commit the coupon redemption, and enqueue the
// confirmation notifications in the outbox.
func (uc *PaymentConfirmUseCase) settlePaid(ctx context.Context, tx repository.Tx, order *model.Order) (*ConfirmResult, error) {
	payments, err := uc.gateway.FetchPayments(ctx, order.GatewayOrderID)
	if err != nil {
		return nil, fmt.Errorf("fetch gateway payments: %w", err)
	}
	paymentID := ""
	for _, p := range payments {
		if p.Status == adapter.GatewayPaymentSuccess {
			paymentID = p.PaymentID
			break
		}
	}
	if paymentID == "" {
		return nil, fmt.Errorf("gateway reports paid but no settled payment: %w", domain.ErrVerificationFailed)
	}

	for _, item := range order.Items {
		if err := uc.fulfillItem(ctx, tx, order, item); err != nil {
			return nil, err
		}
	}

	if err := order.Transition(model.OrderStatusPaid); err != nil {
		return nil, err
	}
	order.PaymentID = &paymentID
	order.IsProcessed = true
	if err := uc.orders.Save(ctx, tx, order); err != nil {
		return nil, err
	}

	// The only place coupon consumption is committed: tied to confirmed
	// payment, not to verification.
	if order.Coupon != nil {
		if err := uc.coupons.IncrementRedemption(ctx, tx, order.Coupon.Code, order.UserID); err != nil {
			return nil, fmt.Errorf("commit coupon redemption: %w", err)
		}
		metrics.IncCouponRedemption(order.Coupon.Code)
	}

	if err := uc.enqueueConfirmationNotices(ctx, tx, order); err != nil {
		return nil, err
	}

	total := order.TotalPrice()
	metrics.AddOrderRevenue(order.Currency, total.InexactFloat64())
	uc.log.Info().
		Str("order_id", order.ID).
		Str("payment_id", paymentID).
		Str("total", total.String()).
		Msg("order settled")

	return &ConfirmResult{
		Message:     "payment verified",
		OrderStatus: order.Status,
		PaymentID:   paymentID,
		TotalAmount: total,
	}, nil
}

// fulfillItem dispatches one verified item by service type. The switch is
// exhaustive: an attribute combination that matches no branch is an error,
// not a silent skip — a paid item must never quietly produce nothing.
func (uc *PaymentConfirmUseCase) fulfillItem(ctx context.Context, tx repository.Tx, order *model.Order, item model.VerifiedOrderItem) error {
	switch item.ServiceType {
	case model.ServiceTypeSubscription:
		return uc.fulfillSubscription(ctx, tx, order, item)
	case model.ServiceTypeDirectorUnlock:
		return uc.fulfillCredits(ctx, tx, order, item, model.CreditTypeDirector, "")
	case model.ServiceTypeCompanyUnlock:
		return uc.fulfillCredits(ctx, tx, order, item, model.CreditTypeCompany, item.Attrs.CompanyID)
	case model.ServiceTypeVPDUnlock:
		return uc.fulfillVPD(ctx, tx, order, item)
	default:
		return fmt.Errorf("service %s type %s: %w", item.ServiceID, item.ServiceType, domain.ErrUnfulfillableItem)
	}
}

func (uc *PaymentConfirmUseCase) fulfillSubscription(ctx context.Context, tx repository.Tx, order *model.Order, item model.VerifiedOrderItem) error {
	// Fast path: a subscription already created for this order is reused.
	// The unique constraint on order_id is the real guard; this just avoids
	// burning an insert on the common replay.
	existing, err := uc.subs.FindByOrderID(ctx, tx, order.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	sub := existing
	if sub == nil {
		sub, err = model.NewSubscription(uuid.NewString(), order.UserID, item.ServiceID, order.ID, item.Attrs.Plan, item.Attrs.Zones)
		if err != nil {
			return err
		}
		if err := uc.subs.Create(ctx, tx, sub); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				// Lost the race to a concurrent confirm; conflict is success.
				sub, err = uc.subs.FindByOrderID(ctx, tx, order.ID)
				if err != nil {
					return err
				}
			} else {
				return err
			}
		}
	}
	metrics.IncFulfillment(string(model.ServiceTypeSubscription))

	tag := AudienceTagFullPlan
	if sub.IsTrial() {
		tag = AudienceTagTrial
	}
	return uc.enqueue(ctx, tx, order, model.OutboxEventAudienceTag, map[string]interface{}{
		"email": order.CustomerEmail,
		"tag":   tag,
	})
}

func (uc *PaymentConfirmUseCase) fulfillCredits(ctx context.Context, tx repository.Tx, order *model.Order, item model.VerifiedOrderItem, typ model.CreditType, unlockCompanyID string) error {
	credits := item.Attrs.BulkCredits(item.ServiceType)
	if credits <= 0 {
		// Single-unlock purchase: the authoritative quantity was fixed at
		// the single-unlock credit count by the pricing engine.
		credits = item.Quantity
	}
	grant, err := model.NewCreditGrant(uuid.NewString(), order.UserID, order.ID, typ, credits, unlockCreditExpiryDays)
	if err != nil {
		return err
	}
	if err := uc.credits.Grant(ctx, tx, grant); err != nil {
		return err
	}
	metrics.IncFulfillment(string(item.ServiceType))

	// A company unlock bought with a specific company attached consumes one
	// credit immediately to unlock it.
	if unlockCompanyID != "" {
		if err := uc.unlocks.CreateUnlockedCompany(ctx, tx, &model.UnlockedCompany{
			ID:        uuid.NewString(),
			UserID:    order.UserID,
			CompanyID: unlockCompanyID,
		}); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return domain.ErrAlreadyUnlocked
			}
			return err
		}
		if err := uc.credits.ConsumeOne(ctx, tx, order.UserID, typ); err != nil {
			return err
		}
	}
	return nil
}

func (uc *PaymentConfirmUseCase) fulfillVPD(ctx context.Context, tx repository.Tx, order *model.Order, item model.VerifiedOrderItem) error {
	job := &model.UnlockJob{
		ID:          uuid.NewString(),
		UserID:      order.UserID,
		OrderID:     order.ID,
		CompanyID:   item.Attrs.CompanyID,
		CompanyName: item.Attrs.CompanyName,
		Status:      model.UnlockJobStatusQueued,
	}
	if err := uc.unlocks.CreateJob(ctx, tx, job); err != nil {
		return err
	}
	if err := uc.unlocks.CreateUnlockedCompany(ctx, tx, &model.UnlockedCompany{
		ID:          uuid.NewString(),
		UserID:      order.UserID,
		CompanyID:   item.Attrs.CompanyID,
		CompanyName: item.Attrs.CompanyName,
		Pending:     true,
	}); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.ErrAlreadyUnlocked
		}
		return err
	}
	metrics.IncFulfillment(string(model.ServiceTypeVPDUnlock))
	return nil
}

// enqueueConfirmationNotices records the email and (when a phone number
// exists) WhatsApp confirmations in the outbox. They are delivered after
// commit; a notification provider outage cannot roll back payment truth.
func (uc *PaymentConfirmUseCase) enqueueConfirmationNotices(ctx context.Context, tx repository.Tx, order *model.Order) error {
	if order.CustomerEmail != "" {
		if err := uc.enqueue(ctx, tx, order, model.OutboxEventEmail, map[string]interface{}{
			"to":       order.CustomerEmail,
			"order_id": order.ID,
			"total":    order.TotalPrice().String(),
			"currency": order.Currency,
		}); err != nil {
			return err
		}
	}
	if order.CustomerPhone != "" {
		if err := uc.enqueue(ctx, tx, order, model.OutboxEventWhatsApp, map[string]interface{}{
			"phone":    order.CustomerPhone,
			"order_id": order.ID,
			"total":    order.TotalPrice().String(),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (uc *PaymentConfirmUseCase) enqueue(ctx context.Context, tx repository.Tx, order *model.Order, typ model.OutboxEventType, payload map[string]interface{}) error {
	ev, err := model.NewOutboxEvent(uuid.NewString(), order.ID, typ, payload)
	if err != nil {
		return err
	}
	return uc.outbox.Enqueue(ctx, tx, ev)
}

func priorResult(order *model.Order) *ConfirmResult {
	paymentID := ""
	if order.PaymentID != nil {
		paymentID = *order.PaymentID
	}
	return &ConfirmResult{
		Message:     "order already processed",
		OrderStatus: order.Status,
		PaymentID:   paymentID,
		TotalAmount: order.TotalPrice(),
	}
}

func isDomainErr(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound,
		domain.ErrOrderNotFound,
		domain.ErrAlreadyUnlocked,
		domain.ErrAlreadyProcessed,
		domain.ErrConflict,
		domain.ErrInvalidArgument,
		domain.ErrInsufficientCredits,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

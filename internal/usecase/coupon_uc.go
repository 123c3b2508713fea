// File: internal/usecase/coupon_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/domain/model"
	"corpdata-commerce/internal/domain/ports/repository"
)

// CouponVerifier decides coupon applicability for a cart. Each check is a
// hard stop. Verification never mutates redemption counters: those are
// committed only when the paying order confirms (see payment_uc.go), so an
// abandoned cart cannot consume a coupon.
type CouponVerifier struct {
	coupons repository.CouponRepository
	orders  repository.OrderRepository
	now     func() time.Time
}

func NewCouponVerifier(coupons repository.CouponRepository, orders repository.OrderRepository) *CouponVerifier {
	return &CouponVerifier{coupons: coupons, orders: orders, now: time.Now}
}

// Verify runs the eligibility chain and returns the applied-coupon snapshot
// with the computed discount.
func (v *CouponVerifier) Verify(ctx context.Context, tx repository.Tx, code string, orderValue decimal.Decimal, userID string, serviceIDs []string) (*model.AppliedCoupon, error) {
	c, err := v.coupons.FindByCode(ctx, tx, code)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrCouponNotFound
		}
		return nil, fmt.Errorf("lookup coupon %q: %w", code, err)
	}

	if !c.Active {
		return nil, domain.ErrCouponInactive
	}
	if c.ExpiresAt != nil && v.now().After(*c.ExpiresAt) {
		return nil, domain.ErrCouponExpired
	}
	if c.Redemptions >= c.MaxRedemptions {
		return nil, domain.ErrCouponExhausted
	}
	if c.MinOrderValue != nil && orderValue.LessThan(*c.MinOrderValue) {
		return nil, domain.ErrCouponMinOrderValue
	}

	if c.FirstTimeOnly {
		paid, err := v.orders.CountPaidByUser(ctx, tx, userID)
		if err != nil {
			return nil, fmt.Errorf("count paid orders: %w", err)
		}
		if paid > 0 {
			return nil, domain.ErrCouponNotFirstOrder
		}
	}

	if len(c.ValidUsers) > 0 && !contains(c.ValidUsers, userID) {
		return nil, domain.ErrCouponUserNotValid
	}

	used, err := v.orders.CountPaidByUserAndCoupon(ctx, tx, userID, code)
	if err != nil {
		return nil, fmt.Errorf("count coupon redemptions: %w", err)
	}
	if used >= c.MaxRedemptionsPerUser {
		return nil, domain.ErrCouponUserExhausted
	}

	// Service allow-list is all-or-nothing: every service in the cart must
	// be covered, not just one.
	if len(c.ValidServices) > 0 {
		for _, id := range serviceIDs {
			if !contains(c.ValidServices, id) {
				return nil, domain.ErrCouponServiceScope
			}
		}
	}

	return &model.AppliedCoupon{
		Code:     c.Code,
		Type:     c.Type,
		Value:    c.Value,
		Discount: c.DiscountOn(orderValue),
	}, nil
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

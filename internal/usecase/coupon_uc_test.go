package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/domain/model"
)

func testCoupon(code string) *model.Coupon {
	return &model.Coupon{
		Code:                  code,
		Type:                  model.DiscountTypePercentage,
		Value:                 decimal.NewFromInt(10),
		MaxRedemptions:        100,
		MaxRedemptionsPerUser: 1,
		Active:                true,
	}
}

func newVerifier(coupons *memCouponRepo, orders *memOrderRepo) *CouponVerifier {
	return NewCouponVerifier(coupons, orders)
}

func TestCouponVerifyHappyPath(t *testing.T) {
	coupons := newMemCouponRepo()
	coupons.byCode["SAVE10"] = testCoupon("SAVE10")
	v := newVerifier(coupons, newMemOrderRepo())

	ac, err := v.Verify(context.Background(), nil, "SAVE10", decimal.NewFromInt(1000), "u1", []string{"svc-a"})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ac.Code != "SAVE10" {
		t.Errorf("code = %q", ac.Code)
	}
	if !ac.Discount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("discount = %s, want 100", ac.Discount)
	}
	// Verification must not touch counters.
	if len(coupons.increments) != 0 {
		t.Errorf("verify mutated redemption counters: %v", coupons.increments)
	}
}

func TestCouponVerifyFlatDiscount(t *testing.T) {
	coupons := newMemCouponRepo()
	c := testCoupon("FLAT200")
	c.Type = model.DiscountTypeFlat
	c.Value = decimal.NewFromInt(200)
	coupons.byCode["FLAT200"] = c
	v := newVerifier(coupons, newMemOrderRepo())

	ac, err := v.Verify(context.Background(), nil, "FLAT200", decimal.NewFromInt(1000), "u1", nil)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ac.Discount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("discount = %s, want 200", ac.Discount)
	}
}

func TestCouponVerifyChain(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	minVal := decimal.NewFromInt(5000)

	tests := []struct {
		name    string
		mutate  func(*model.Coupon)
		orders  func(*memOrderRepo)
		wantErr error
	}{
		{
			name:    "inactive",
			mutate:  func(c *model.Coupon) { c.Active = false },
			wantErr: domain.ErrCouponInactive,
		},
		{
			name:    "expired",
			mutate:  func(c *model.Coupon) { c.ExpiresAt = &expired },
			wantErr: domain.ErrCouponExpired,
		},
		{
			name:    "exhausted",
			mutate:  func(c *model.Coupon) { c.Redemptions = c.MaxRedemptions },
			wantErr: domain.ErrCouponExhausted,
		},
		{
			name:    "below min order value",
			mutate:  func(c *model.Coupon) { c.MinOrderValue = &minVal },
			wantErr: domain.ErrCouponMinOrderValue,
		},
		{
			name:    "not first order",
			mutate:  func(c *model.Coupon) { c.FirstTimeOnly = true },
			orders:  func(o *memOrderRepo) { o.paidByUser["u1"] = 2 },
			wantErr: domain.ErrCouponNotFirstOrder,
		},
		{
			name:    "user not on allow list",
			mutate:  func(c *model.Coupon) { c.ValidUsers = []string{"u2", "u3"} },
			wantErr: domain.ErrCouponUserNotValid,
		},
		{
			name:    "per-user limit reached",
			mutate:  func(c *model.Coupon) {},
			orders:  func(o *memOrderRepo) { o.paidByCoupon["u1:CHAIN"] = 1 },
			wantErr: domain.ErrCouponUserExhausted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coupons := newMemCouponRepo()
			c := testCoupon("CHAIN")
			tt.mutate(c)
			coupons.byCode["CHAIN"] = c
			orders := newMemOrderRepo()
			if tt.orders != nil {
				tt.orders(orders)
			}
			v := newVerifier(coupons, orders)

			_, err := v.Verify(context.Background(), nil, "CHAIN", decimal.NewFromInt(1000), "u1", nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCouponVerifyNotFound(t *testing.T) {
	v := newVerifier(newMemCouponRepo(), newMemOrderRepo())
	_, err := v.Verify(context.Background(), nil, "NOPE", decimal.NewFromInt(100), "u1", nil)
	if !errors.Is(err, domain.ErrCouponNotFound) {
		t.Errorf("err = %v, want ErrCouponNotFound", err)
	}
}

func TestCouponVerifyServiceScopeAllOrNothing(t *testing.T) {
	coupons := newMemCouponRepo()
	c := testCoupon("SCOPED")
	c.ValidServices = []string{"svc-a", "svc-b"}
	coupons.byCode["SCOPED"] = c
	v := newVerifier(coupons, newMemOrderRepo())

	// One uncovered service in the cart fails the whole coupon.
	_, err := v.Verify(context.Background(), nil, "SCOPED", decimal.NewFromInt(1000), "u1", []string{"svc-a", "svc-c"})
	if !errors.Is(err, domain.ErrCouponServiceScope) {
		t.Errorf("err = %v, want ErrCouponServiceScope", err)
	}

	// Fully covered cart passes.
	if _, err := v.Verify(context.Background(), nil, "SCOPED", decimal.NewFromInt(1000), "u1", []string{"svc-a", "svc-b"}); err != nil {
		t.Errorf("fully covered cart: %v", err)
	}
}

func TestCouponVerifyFirstTimeAllowedWithNoPaidOrders(t *testing.T) {
	coupons := newMemCouponRepo()
	c := testCoupon("FIRST")
	c.FirstTimeOnly = true
	coupons.byCode["FIRST"] = c
	v := newVerifier(coupons, newMemOrderRepo())

	if _, err := v.Verify(context.Background(), nil, "FIRST", decimal.NewFromInt(1000), "fresh-user", nil); err != nil {
		t.Errorf("first order: %v", err)
	}
}

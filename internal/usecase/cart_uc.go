// File: internal/usecase/cart_uc.go
package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/domain/model"
	"corpdata-commerce/internal/domain/ports/repository"
)

const gstRate = "0.18"

// CartTotals is the verified output of cart calculation. Items carry
// server-authoritative prices; this, not the client payload, is what gets
// persisted and charged.
type CartTotals struct {
	Items    []model.VerifiedOrderItem
	Value    decimal.Decimal // pre-tax, post-discount
	GST      decimal.Decimal
	Total    decimal.Decimal
	Discount decimal.Decimal
	Coupon   *model.AppliedCoupon
}

// CartCalculator orchestrates the pricing engine and coupon verifier into a
// verified line-item list with subtotal, tax, discount, and grand total.
type CartCalculator struct {
	catalog repository.CatalogRepository
	pricing *PricingEngine
	coupons *CouponVerifier
}

func NewCartCalculator(catalog repository.CatalogRepository, pricing *PricingEngine, coupons *CouponVerifier) *CartCalculator {
	return &CartCalculator{catalog: catalog, pricing: pricing, coupons: coupons}
}

// Calculate verifies and totals a cart. The base total is rounded to the
// nearest integer currency unit before discount and tax to avoid
// fractional-cent drift across items. GST (18%) applies to INR only; other
// currencies carry zero tax.
func (c *CartCalculator) Calculate(ctx context.Context, tx repository.Tx, items []model.CartItem, currency, userID, couponCode string) (*CartTotals, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("empty cart: %w", domain.ErrInvalidArgument)
	}

	verified := make([]model.VerifiedOrderItem, 0, len(items))
	base := decimal.Zero
	for _, item := range items {
		entry, err := c.catalog.FindByID(ctx, tx, item.ServiceID)
		if err != nil {
			if err == domain.ErrNotFound {
				return nil, fmt.Errorf("service %s: %w", item.ServiceID, domain.ErrNotFound)
			}
			return nil, fmt.Errorf("fetch service %s: %w", item.ServiceID, err)
		}
		if err := item.Attrs.Validate(entry.Type); err != nil {
			return nil, fmt.Errorf("service %s attributes: %w", item.ServiceID, err)
		}

		priced, err := c.pricing.PriceItem(entry, item.Attrs, item.Quantity, currency)
		if err != nil {
			return nil, err
		}

		vi := model.VerifiedOrderItem{
			ServiceID:   entry.ID,
			ServiceName: entry.Name,
			ServiceType: entry.Type,
			UnitPrice:   priced.UnitPrice,
			Quantity:    priced.Quantity,
			Currency:    currency,
			Attrs:       item.Attrs,
		}
		verified = append(verified, vi)
		base = base.Add(vi.LineTotal())
	}

	base = base.Round(0)

	discount := decimal.Zero
	var applied *model.AppliedCoupon
	if couponCode != "" {
		serviceIDs := make([]string, 0, len(verified))
		for _, vi := range verified {
			serviceIDs = append(serviceIDs, vi.ServiceID)
		}
		ac, err := c.coupons.Verify(ctx, tx, couponCode, base, userID, serviceIDs)
		if err != nil {
			return nil, err
		}
		applied = ac
		discount = ac.Discount
	}

	value := base.Sub(discount)
	if value.IsNegative() {
		value = decimal.Zero
	}

	gst := decimal.Zero
	if currency == "INR" {
		gst = value.Mul(decimal.RequireFromString(gstRate)).Round(2)
	}

	return &CartTotals{
		Items:    verified,
		Value:    value,
		GST:      gst,
		Total:    value.Add(gst).Round(2),
		Discount: discount.Round(2),
		Coupon:   applied,
	}, nil
}

package model

import (
	"time"

	"github.com/shopspring/decimal"

	"corpdata-commerce/internal/domain"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFlat       DiscountType = "flat"
)

// Coupon is an admin-created discount code. Redemption counters are mutated
// only after a paid order references the coupon, never at verification time.
type Coupon struct {
	Code                  string
	Type                  DiscountType
	Value                 decimal.Decimal
	ExpiresAt             *time.Time
	MaxRedemptions        int
	MaxRedemptionsPerUser int
	Active                bool
	MinOrderValue         *decimal.Decimal
	ValidServices         []string
	ValidUsers            []string
	FirstTimeOnly         bool

	Redemptions int
	UsedBy      []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCoupon validates and constructs a coupon.
func NewCoupon(code string, typ DiscountType, value decimal.Decimal, maxRedemptions, maxPerUser int) (*Coupon, error) {
	if code == "" || maxRedemptions <= 0 || maxPerUser <= 0 || !value.IsPositive() {
		return nil, domain.ErrInvalidArgument
	}
	switch typ {
	case DiscountTypePercentage, DiscountTypeFlat:
	default:
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Coupon{
		Code:                  code,
		Type:                  typ,
		Value:                 value,
		MaxRedemptions:        maxRedemptions,
		MaxRedemptionsPerUser: maxPerUser,
		Active:                true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// DiscountOn computes the discount amount for the given order value.
// Unrecognized types yield zero.
func (c *Coupon) DiscountOn(orderValue decimal.Decimal) decimal.Decimal {
	switch c.Type {
	case DiscountTypePercentage:
		return orderValue.Mul(c.Value).Div(decimal.NewFromInt(100))
	case DiscountTypeFlat:
		return c.Value
	default:
		return decimal.Zero
	}
}

// AppliedCoupon is the snapshot stored on an order when a coupon verifies.
type AppliedCoupon struct {
	Code     string          `json:"code"`
	Type     DiscountType    `json:"type"`
	Value    decimal.Decimal `json:"value"`
	Discount decimal.Decimal `json:"discount"`
}

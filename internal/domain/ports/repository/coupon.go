package repository

import (
	"context"

	"corpdata-commerce/internal/domain/model"
)

// CouponRepository stores coupons. IncrementRedemption is an atomic
// counter update (redemptions+1, used_by append), never read-modify-write.
type CouponRepository interface {
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Coupon, error)
	Save(ctx context.Context, tx Tx, c *model.Coupon) error
	IncrementRedemption(ctx context.Context, tx Tx, code, userID string) error
	SetActive(ctx context.Context, tx Tx, code string, active bool) error
}

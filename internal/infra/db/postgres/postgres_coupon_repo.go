package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/domain/model"
	"corpdata-commerce/internal/domain/ports/repository"
)

var _ repository.CouponRepository = (*couponRepo)(nil)

type couponRepo struct{ pool *pgxpool.Pool }

func NewCouponRepo(pool *pgxpool.Pool) *couponRepo {
	return &couponRepo{pool: pool}
}

const couponColumns = `code, type, value, expires_at, max_redemptions, max_redemptions_per_user,
active, min_order_value, valid_services, valid_users, first_time_only,
redemptions, used_by, created_at, updated_at`

func (r *couponRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Coupon, error) {
	q := `SELECT ` + couponColumns + ` FROM coupons WHERE code=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}

	c := &model.Coupon{}
	if err := row.Scan(&c.Code, &c.Type, &c.Value, &c.ExpiresAt, &c.MaxRedemptions, &c.MaxRedemptionsPerUser,
		&c.Active, &c.MinOrderValue, &c.ValidServices, &c.ValidUsers, &c.FirstTimeOnly,
		&c.Redemptions, &c.UsedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

func (r *couponRepo) Save(ctx context.Context, tx repository.Tx, c *model.Coupon) error {
	const q = `
INSERT INTO coupons (
  code, type, value, expires_at, max_redemptions, max_redemptions_per_user,
  active, min_order_value, valid_services, valid_users, first_time_only,
  redemptions, used_by, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
) ON CONFLICT (code) DO UPDATE SET
  type=$2, value=$3, expires_at=$4, max_redemptions=$5, max_redemptions_per_user=$6,
  active=$7, min_order_value=$8, valid_services=$9, valid_users=$10, first_time_only=$11,
  updated_at=NOW();`
	_, err := execSQL(ctx, r.pool, tx, q,
		c.Code, c.Type, c.Value, c.ExpiresAt, c.MaxRedemptions, c.MaxRedemptionsPerUser,
		c.Active, c.MinOrderValue, c.ValidServices, c.ValidUsers, c.FirstTimeOnly,
		c.Redemptions, c.UsedBy, c.CreatedAt, c.UpdatedAt)
	return translateErr(err)
}

// IncrementRedemption is a single atomic counter update, never
// read-modify-write, so concurrent settlements cannot lose increments.
func (r *couponRepo) IncrementRedemption(ctx context.Context, tx repository.Tx, code, userID string) error {
	const q = `
UPDATE coupons
   SET redemptions = redemptions + 1,
       used_by = array_append(used_by, $2),
       updated_at = NOW()
 WHERE code=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, code, userID)
	if err != nil {
		return translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCouponNotFound
	}
	return nil
}

func (r *couponRepo) SetActive(ctx context.Context, tx repository.Tx, code string, active bool) error {
	const q = `UPDATE coupons SET active=$2, updated_at=NOW() WHERE code=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, code, active)
	if err != nil {
		return translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCouponNotFound
	}
	return nil
}

// File: internal/usecase/admin_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"corpdata-commerce/internal/domain/model"
	"corpdata-commerce/internal/domain/ports/repository"
)

// AdminUseCase backs the operator API: catalog and coupon management.
type AdminUseCase struct {
	catalog repository.CatalogRepository
	coupons repository.CouponRepository
	log     *zerolog.Logger
}

func NewAdminUseCase(catalog repository.CatalogRepository, coupons repository.CouponRepository, logger *zerolog.Logger) *AdminUseCase {
	compLog := logger.With().Str("component", "AdminUseCase").Logger()
	return &AdminUseCase{catalog: catalog, coupons: coupons, log: &compLog}
}

// CreateCoupon validates and persists a new coupon code.
func (uc *AdminUseCase) CreateCoupon(ctx context.Context, code string, typ model.DiscountType, value decimal.Decimal, maxRedemptions, maxPerUser int, mutate func(*model.Coupon)) (*model.Coupon, error) {
	c, err := model.NewCoupon(code, typ, value, maxRedemptions, maxPerUser)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(c)
	}
	if err := uc.coupons.Save(ctx, nil, c); err != nil {
		return nil, err
	}
	uc.log.Info().Str("code", c.Code).Msg("coupon created")
	return c, nil
}

func (uc *AdminUseCase) SetCouponActive(ctx context.Context, code string, active bool) error {
	if err := uc.coupons.SetActive(ctx, nil, code, active); err != nil {
		return err
	}
	uc.log.Info().Str("code", code).Bool("active", active).Msg("coupon toggled")
	return nil
}

func (uc *AdminUseCase) SaveService(ctx context.Context, entry *model.ServiceCatalogEntry) error {
	if err := uc.catalog.Save(ctx, nil, entry); err != nil {
		return err
	}
	uc.log.Info().Str("service_id", entry.ID).Msg("service saved")
	return nil
}

func (uc *AdminUseCase) ListServices(ctx context.Context) ([]*model.ServiceCatalogEntry, error) {
	return uc.catalog.List(ctx, nil)
}

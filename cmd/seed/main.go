package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"corpdata-commerce/internal/config"
	"corpdata-commerce/internal/domain/model"
	pg "corpdata-commerce/internal/infra/db/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	catalogRepo := pg.NewCatalogRepo(pool)
	couponRepo := pg.NewCouponRepo(pool)

	// If the catalog is already populated, do nothing.
	existing, err := catalogRepo.List(ctx, nil)
	if err != nil {
		log.Fatalf("list services: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d services already present. No changes.\n", len(existing))
		return
	}

	now := time.Now()
	services := []*model.ServiceCatalogEntry{
		{
			ID:   "corporate-data-subscription",
			Name: "Corporate Data Subscription",
			Type: model.ServiceTypeSubscription,
			Subscription: map[string][]model.ZonalRates{
				"INR": {
					{Zone: "East", Rates: map[model.Plan]decimal.Decimal{
						model.PlanTrial:     decimal.Zero,
						model.PlanMonthly:   decimal.NewFromInt(999),
						model.PlanQuarterly: decimal.NewFromInt(2499),
						model.PlanAnnually:  decimal.NewFromInt(8999),
					}},
					{Zone: "West", Rates: map[model.Plan]decimal.Decimal{
						model.PlanTrial:     decimal.Zero,
						model.PlanMonthly:   decimal.NewFromInt(1199),
						model.PlanQuarterly: decimal.NewFromInt(2999),
						model.PlanAnnually:  decimal.NewFromInt(10999),
					}},
					{Zone: "North", Rates: map[model.Plan]decimal.Decimal{
						model.PlanTrial:     decimal.Zero,
						model.PlanMonthly:   decimal.NewFromInt(1099),
						model.PlanQuarterly: decimal.NewFromInt(2799),
						model.PlanAnnually:  decimal.NewFromInt(9999),
					}},
					{Zone: "South", Rates: map[model.Plan]decimal.Decimal{
						model.PlanTrial:     decimal.Zero,
						model.PlanMonthly:   decimal.NewFromInt(1299),
						model.PlanQuarterly: decimal.NewFromInt(3299),
						model.PlanAnnually:  decimal.NewFromInt(11999),
					}},
				},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:   "director-unlock",
			Name: "Director Report Unlock",
			Type: model.ServiceTypeDirectorUnlock,
			Unlock: map[string]model.UnlockPricing{
				"INR": {
					SinglePrice:   decimal.NewFromInt(499),
					SingleCredits: 1,
					BulkTiers: []model.UnlockTier{
						{Credits: 10, PricePerCredit: decimal.NewFromInt(449)},
						{Credits: 50, PricePerCredit: decimal.NewFromInt(399)},
						{Credits: 100, PricePerCredit: decimal.NewFromInt(349)},
					},
				},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:   "company-unlock",
			Name: "Company Financials Unlock",
			Type: model.ServiceTypeCompanyUnlock,
			Unlock: map[string]model.UnlockPricing{
				"INR": {
					SinglePrice:   decimal.NewFromInt(999),
					SingleCredits: 1,
					BulkTiers: []model.UnlockTier{
						{Credits: 10, PricePerCredit: decimal.NewFromInt(899)},
						{Credits: 25, PricePerCredit: decimal.NewFromInt(799)},
					},
				},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:   "vpd-unlock",
			Name: "Public Documents Unlock",
			Type: model.ServiceTypeVPDUnlock,
			Unlock: map[string]model.UnlockPricing{
				"INR": {
					SinglePrice:   decimal.NewFromInt(1499),
					SingleCredits: 1,
				},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	for _, svc := range services {
		if err := catalogRepo.Save(ctx, nil, svc); err != nil {
			log.Fatalf("save service %q: %v", svc.ID, err)
		}
		fmt.Printf("seeded service: %s (%s)\n", svc.ID, svc.Type)
	}

	welcome, err := model.NewCoupon("WELCOME10", model.DiscountTypePercentage, decimal.NewFromInt(10), 1000, 1)
	if err != nil {
		log.Fatalf("build coupon: %v", err)
	}
	welcome.FirstTimeOnly = true
	if err := couponRepo.Save(ctx, nil, welcome); err != nil {
		log.Fatalf("save coupon: %v", err)
	}
	fmt.Printf("seeded coupon: %s\n", welcome.Code)

	fmt.Println("Seeding complete.")
}

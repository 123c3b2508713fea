package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/domain/model"
)

func subscriptionEntry() *model.ServiceCatalogEntry {
	return &model.ServiceCatalogEntry{
		ID:   "corporate-data-subscription",
		Name: "Corporate Data Subscription",
		Type: model.ServiceTypeSubscription,
		Subscription: map[string][]model.ZonalRates{
			"INR": {
				{Zone: "East", Rates: map[model.Plan]decimal.Decimal{
					model.PlanTrial:   decimal.Zero,
					model.PlanMonthly: decimal.NewFromInt(999),
				}},
				{Zone: "West", Rates: map[model.Plan]decimal.Decimal{
					model.PlanTrial:   decimal.Zero,
					model.PlanMonthly: decimal.NewFromInt(1199),
				}},
			},
		},
	}
}

func directorEntry() *model.ServiceCatalogEntry {
	return &model.ServiceCatalogEntry{
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
				},
			},
		},
	}
}

func TestPriceSubscriptionSingleZone(t *testing.T) {
	e := NewPricingEngine()
	got, err := e.PriceItem(subscriptionEntry(), model.FulfillmentAttrs{
		Plan:  model.PlanMonthly,
		Zones: []string{"East"},
	}, 3, "INR")
	if err != nil {
		t.Fatalf("PriceItem: %v", err)
	}
	if !got.UnitPrice.Equal(decimal.NewFromInt(999)) {
		t.Errorf("unit price = %s, want 999", got.UnitPrice)
	}
	if got.Quantity != 1 {
		t.Errorf("quantity = %d, want 1 (client quantity ignored)", got.Quantity)
	}
}

func TestPriceSubscriptionMultiZoneSum(t *testing.T) {
	e := NewPricingEngine()
	got, err := e.PriceItem(subscriptionEntry(), model.FulfillmentAttrs{
		Plan:  model.PlanMonthly,
		Zones: []string{"East", "West"},
	}, 1, "INR")
	if err != nil {
		t.Fatalf("PriceItem: %v", err)
	}
	if !got.UnitPrice.Equal(decimal.NewFromInt(2198)) {
		t.Errorf("unit price = %s, want 2198", got.UnitPrice)
	}
}

func TestPriceSubscriptionZoneDiscount(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	entry := subscriptionEntry()
	entry.Subscription["INR"][0].Discount = &model.RateDiscount{
		Percent:  decimal.NewFromInt(10),
		StartsAt: now.Add(-24 * time.Hour),
		EndsAt:   now.Add(24 * time.Hour),
	}

	e := NewPricingEngine()
	e.now = func() time.Time { return now }

	got, err := e.PriceItem(entry, model.FulfillmentAttrs{
		Plan:  model.PlanMonthly,
		Zones: []string{"East"},
	}, 1, "INR")
	if err != nil {
		t.Fatalf("PriceItem: %v", err)
	}
	if !got.UnitPrice.Equal(decimal.RequireFromString("899.1")) {
		t.Errorf("discounted price = %s, want 899.1", got.UnitPrice)
	}

	// Trial plans never get the discount.
	got, err = e.PriceItem(entry, model.FulfillmentAttrs{
		Plan:  model.PlanTrial,
		Zones: []string{"East"},
	}, 1, "INR")
	if err != nil {
		t.Fatalf("PriceItem trial: %v", err)
	}
	if !got.UnitPrice.Equal(decimal.Zero) {
		t.Errorf("trial price = %s, want 0", got.UnitPrice)
	}

	// Outside the window the full rate applies.
	e.now = func() time.Time { return now.Add(72 * time.Hour) }
	got, err = e.PriceItem(entry, model.FulfillmentAttrs{
		Plan:  model.PlanMonthly,
		Zones: []string{"East"},
	}, 1, "INR")
	if err != nil {
		t.Fatalf("PriceItem after window: %v", err)
	}
	if !got.UnitPrice.Equal(decimal.NewFromInt(999)) {
		t.Errorf("price after window = %s, want 999", got.UnitPrice)
	}
}

func TestPriceSubscriptionZoneNotCovered(t *testing.T) {
	e := NewPricingEngine()
	_, err := e.PriceItem(subscriptionEntry(), model.FulfillmentAttrs{
		Plan:  model.PlanMonthly,
		Zones: []string{"Central"},
	}, 1, "INR")
	if !errors.Is(err, domain.ErrZoneNotCovered) {
		t.Errorf("err = %v, want ErrZoneNotCovered", err)
	}
}

func TestPriceSubscriptionMissingCurrency(t *testing.T) {
	e := NewPricingEngine()
	_, err := e.PriceItem(subscriptionEntry(), model.FulfillmentAttrs{
		Plan:  model.PlanMonthly,
		Zones: []string{"East"},
	}, 1, "USD")
	if !errors.Is(err, domain.ErrMissingPricing) {
		t.Errorf("err = %v, want ErrMissingPricing", err)
	}
}

func TestPriceUnlockBulkTier(t *testing.T) {
	e := NewPricingEngine()
	got, err := e.PriceItem(directorEntry(), model.FulfillmentAttrs{BulkUnlockCredits: 50}, 1, "INR")
	if err != nil {
		t.Fatalf("PriceItem: %v", err)
	}
	if !got.UnitPrice.Equal(decimal.NewFromInt(19950)) {
		t.Errorf("bulk price = %s, want 19950 (50 x 399)", got.UnitPrice)
	}
	if got.Quantity != 1 {
		t.Errorf("quantity = %d, want 1", got.Quantity)
	}
}

func TestPriceUnlockNoMatchingTier(t *testing.T) {
	e := NewPricingEngine()
	_, err := e.PriceItem(directorEntry(), model.FulfillmentAttrs{BulkUnlockCredits: 25}, 1, "INR")
	if !errors.Is(err, domain.ErrNoBulkTier) {
		t.Errorf("err = %v, want ErrNoBulkTier", err)
	}
}

func TestPriceUnlockSingleFixesQuantity(t *testing.T) {
	e := NewPricingEngine()
	got, err := e.PriceItem(directorEntry(), model.FulfillmentAttrs{}, 99, "INR")
	if err != nil {
		t.Fatalf("PriceItem: %v", err)
	}
	if !got.UnitPrice.Equal(decimal.NewFromInt(499)) {
		t.Errorf("single price = %s, want 499", got.UnitPrice)
	}
	if got.Quantity != 1 {
		t.Errorf("quantity = %d, want single credit count 1", got.Quantity)
	}
}

func TestPriceUnpricedServiceType(t *testing.T) {
	e := NewPricingEngine()
	entry := &model.ServiceCatalogEntry{ID: "filing-service", Type: model.ServiceTypeOneTime}
	_, err := e.PriceItem(entry, model.FulfillmentAttrs{}, 1, "INR")
	if !errors.Is(err, domain.ErrUnpricedServiceType) {
		t.Errorf("err = %v, want ErrUnpricedServiceType", err)
	}
}

func TestPriceUnknownServiceType(t *testing.T) {
	e := NewPricingEngine()
	entry := &model.ServiceCatalogEntry{ID: "x", Type: model.ServiceType("mystery")}
	_, err := e.PriceItem(entry, model.FulfillmentAttrs{}, 1, "INR")
	if !errors.Is(err, domain.ErrUnknownServiceType) {
		t.Errorf("err = %v, want ErrUnknownServiceType", err)
	}
}

func TestPriceEmptyCurrency(t *testing.T) {
	e := NewPricingEngine()
	_, err := e.PriceItem(subscriptionEntry(), model.FulfillmentAttrs{
		Plan:  model.PlanMonthly,
		Zones: []string{"East"},
	}, 1, "")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

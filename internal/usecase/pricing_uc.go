// File: internal/usecase/pricing_uc.go
package usecase

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/domain/model"
)

// PricedItem is the result of pricing one cart item: the authoritative unit
// price and quantity, derived only from catalog state.
type PricedItem struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// PricingEngine recomputes per-item price and quantity from the service
// catalog. It is a pure function of catalog state; client-submitted prices
// never enter here. Every missing pricing table, unmatched zone, or non-exact
// bulk tier is a hard failure, never a silent zero.
type PricingEngine struct {
	now func() time.Time
}

func NewPricingEngine() *PricingEngine {
	return &PricingEngine{now: time.Now}
}

var hundred = decimal.NewFromInt(100)

// PriceItem prices one cart item against its catalog entry.
func (e *PricingEngine) PriceItem(entry *model.ServiceCatalogEntry, attrs model.FulfillmentAttrs, quantity int, currency string) (PricedItem, error) {
	if entry.IsZero() {
		return PricedItem{}, domain.ErrNotFound
	}
	if currency == "" {
		return PricedItem{}, fmt.Errorf("currency: %w", domain.ErrInvalidArgument)
	}

	switch entry.Type {
	case model.ServiceTypeSubscription:
		return e.priceSubscription(entry, attrs, currency)
	case model.ServiceTypeDirectorUnlock, model.ServiceTypeCompanyUnlock:
		return e.priceUnlock(entry, attrs, quantity, currency)
	case model.ServiceTypeVPDUnlock:
		return e.priceVPD(entry, currency)
	case model.ServiceTypeOneTime, model.ServiceTypeCompliance:
		return PricedItem{}, fmt.Errorf("%s: %w", entry.Type, domain.ErrUnpricedServiceType)
	default:
		return PricedItem{}, fmt.Errorf("%s: %w", entry.Type, domain.ErrUnknownServiceType)
	}
}

// priceSubscription sums each matched zone's per-plan rate. A time-boxed zone
// discount applies to every plan except trial. Quantity is always 1: one
// subscription per order item, whatever quantity the client submitted.
func (e *PricingEngine) priceSubscription(entry *model.ServiceCatalogEntry, attrs model.FulfillmentAttrs, currency string) (PricedItem, error) {
	if err := attrs.Validate(model.ServiceTypeSubscription); err != nil {
		return PricedItem{}, err
	}
	rows, err := entry.ZonalRatesFor(currency)
	if err != nil {
		return PricedItem{}, fmt.Errorf("service %s currency %s: %w", entry.ID, currency, err)
	}

	byZone := make(map[string]model.ZonalRates, len(rows))
	for _, r := range rows {
		byZone[r.Zone] = r
	}

	now := e.now()
	total := decimal.Zero
	for _, zone := range attrs.Zones {
		row, ok := byZone[zone]
		if !ok {
			return PricedItem{}, fmt.Errorf("zone %q: %w", zone, domain.ErrZoneNotCovered)
		}
		rate, ok := row.Rates[attrs.Plan]
		if !ok || rate.IsNegative() {
			return PricedItem{}, fmt.Errorf("zone %q plan %q: %w", zone, attrs.Plan, domain.ErrZoneNotCovered)
		}
		if attrs.Plan != model.PlanTrial && row.Discount.ActiveAt(now) {
			rate = rate.Mul(hundred.Sub(row.Discount.Percent)).Div(hundred)
		}
		total = total.Add(rate)
	}
	return PricedItem{UnitPrice: total, Quantity: 1}, nil
}

// priceUnlock prices director/company unlock credits. Bulk requests must hit
// a tier with the exact credit count; the unit price is the tier's per-credit
// price times the requested credits and the client quantity acts as a
// multiplier. Single requests fix the quantity at the single-unlock credit
// count, overriding whatever the client submitted.
func (e *PricingEngine) priceUnlock(entry *model.ServiceCatalogEntry, attrs model.FulfillmentAttrs, quantity int, currency string) (PricedItem, error) {
	row, err := entry.UnlockPricingFor(currency)
	if err != nil {
		return PricedItem{}, fmt.Errorf("service %s currency %s: %w", entry.ID, currency, err)
	}

	bulk := attrs.BulkCredits(entry.Type)
	if bulk > 0 {
		tier, ok := findTier(row.BulkTiers, bulk)
		if !ok {
			return PricedItem{}, fmt.Errorf("%d credits: %w", bulk, domain.ErrNoBulkTier)
		}
		if quantity < 1 {
			quantity = 1
		}
		price := tier.PricePerCredit.Mul(decimal.NewFromInt(int64(bulk)))
		return PricedItem{UnitPrice: price, Quantity: quantity}, nil
	}

	if row.SingleCredits <= 0 || row.SinglePrice.IsNegative() {
		return PricedItem{}, fmt.Errorf("service %s: %w", entry.ID, domain.ErrMissingPricing)
	}
	return PricedItem{UnitPrice: row.SinglePrice, Quantity: row.SingleCredits}, nil
}

func (e *PricingEngine) priceVPD(entry *model.ServiceCatalogEntry, currency string) (PricedItem, error) {
	row, err := entry.UnlockPricingFor(currency)
	if err != nil {
		return PricedItem{}, fmt.Errorf("service %s currency %s: %w", entry.ID, currency, err)
	}
	if row.SingleCredits <= 0 || row.SinglePrice.IsNegative() {
		return PricedItem{}, fmt.Errorf("service %s: %w", entry.ID, domain.ErrMissingPricing)
	}
	return PricedItem{UnitPrice: row.SinglePrice, Quantity: row.SingleCredits}, nil
}

func findTier(tiers []model.UnlockTier, credits int) (model.UnlockTier, bool) {
	for _, t := range tiers {
		if t.Credits == credits {
			return t, true
		}
	}
	return model.UnlockTier{}, false
}

package model

import (
	"time"

	"github.com/shopspring/decimal"

	"corpdata-commerce/internal/domain"
)

// ServiceType discriminates how a catalog entry is priced and fulfilled.
type ServiceType string

const (
	ServiceTypeSubscription   ServiceType = "subscription"
	ServiceTypeOneTime        ServiceType = "oneTime"
	ServiceTypeDirectorUnlock ServiceType = "directorUnlock"
	ServiceTypeCompanyUnlock  ServiceType = "companyUnlock"
	ServiceTypeVPDUnlock      ServiceType = "vpdUnlock"
	ServiceTypeCompliance     ServiceType = "complianceService"
)

// Plan is a subscription billing period.
type Plan string

const (
	PlanTrial     Plan = "trial"
	PlanMonthly   Plan = "monthly"
	PlanQuarterly Plan = "quarterly"
	PlanAnnually  Plan = "annually"
)

// PlanDuration maps a plan to its entitlement window.
func PlanDuration(p Plan) (time.Duration, error) {
	switch p {
	case PlanTrial:
		return 7 * 24 * time.Hour, nil
	case PlanMonthly:
		return 30 * 24 * time.Hour, nil
	case PlanQuarterly:
		return 90 * 24 * time.Hour, nil
	case PlanAnnually:
		return 365 * 24 * time.Hour, nil
	default:
		return 0, domain.ErrInvalidArgument
	}
}

// RateDiscount is a time-boxed percentage discount on a zone's rates.
// It never applies to trial plans.
type RateDiscount struct {
	Percent  decimal.Decimal `json:"percent"`
	StartsAt time.Time       `json:"starts_at"`
	EndsAt   time.Time       `json:"ends_at"`
}

// ActiveAt reports whether the discount window covers t.
func (d *RateDiscount) ActiveAt(t time.Time) bool {
	if d == nil {
		return false
	}
	return !t.Before(d.StartsAt) && !t.After(d.EndsAt)
}

// ZonalRates holds per-plan subscription rates for one geographic zone.
type ZonalRates struct {
	Zone     string                   `json:"zone"`
	Rates    map[Plan]decimal.Decimal `json:"rates"`
	Discount *RateDiscount            `json:"discount,omitempty"`
}

// UnlockTier is a bulk price point: exactly Credits credits at PricePerCredit each.
type UnlockTier struct {
	Credits        int             `json:"credits"`
	PricePerCredit decimal.Decimal `json:"price_per_credit"`
}

// UnlockPricing is the credit pricing row for one currency.
type UnlockPricing struct {
	SinglePrice   decimal.Decimal `json:"single_price"`
	SingleCredits int             `json:"single_credits"`
	BulkTiers     []UnlockTier    `json:"bulk_tiers,omitempty"`
}

// ServiceCatalogEntry is a purchasable service. The pricing tables that apply
// depend on Type: Subscription for subscription services, Unlock for the
// unlock types. Lookups fail closed when the required table is absent.
type ServiceCatalogEntry struct {
	ID   string
	Name string
	Type ServiceType

	// Subscription pricing keyed by currency, one row per zone.
	Subscription map[string][]ZonalRates
	// Unlock pricing keyed by currency.
	Unlock map[string]UnlockPricing

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *ServiceCatalogEntry) IsZero() bool { return e == nil || e.ID == "" }

// ZonalRatesFor returns the zone rate rows for currency, failing closed.
func (e *ServiceCatalogEntry) ZonalRatesFor(currency string) ([]ZonalRates, error) {
	rows, ok := e.Subscription[currency]
	if !ok || len(rows) == 0 {
		return nil, domain.ErrMissingPricing
	}
	return rows, nil
}

// UnlockPricingFor returns the unlock pricing row for currency, failing closed.
func (e *ServiceCatalogEntry) UnlockPricingFor(currency string) (UnlockPricing, error) {
	row, ok := e.Unlock[currency]
	if !ok {
		return UnlockPricing{}, domain.ErrMissingPricing
	}
	return row, nil
}

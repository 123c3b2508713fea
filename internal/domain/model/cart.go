package model

import (
	"github.com/shopspring/decimal"

	"corpdata-commerce/internal/domain"
)

// FulfillmentAttrs carries the per-item purchase attributes submitted with a
// cart item. Which fields are required depends on the service type; Validate
// enforces that at cart acceptance so the fulfillment dispatch downstream can
// be exhaustive instead of silently skipping unmatched combinations.
type FulfillmentAttrs struct {
	// Subscription
	Plan  Plan     `json:"plan,omitempty"`
	Zones []string `json:"zones,omitempty"`

	// Director unlocks
	BulkUnlockCredits int `json:"bulk_unlock_credits,omitempty"`

	// Company unlocks
	CompanyUnlockCredits int    `json:"company_unlock_credits,omitempty"`
	CompanyID            string `json:"company_id,omitempty"`

	// VPD unlocks
	CompanyName string `json:"company_name,omitempty"`
}

// Validate checks that the attribute combination is fulfillable for the given
// service type. Optional fields may be zero; required ones may not.
func (a FulfillmentAttrs) Validate(st ServiceType) error {
	switch st {
	case ServiceTypeSubscription:
		switch a.Plan {
		case PlanTrial, PlanMonthly, PlanQuarterly, PlanAnnually:
		default:
			return domain.ErrInvalidArgument
		}
		if len(a.Zones) == 0 {
			return domain.ErrInvalidArgument
		}
		return nil
	case ServiceTypeDirectorUnlock:
		if a.BulkUnlockCredits < 0 {
			return domain.ErrInvalidArgument
		}
		return nil
	case ServiceTypeCompanyUnlock:
		if a.CompanyUnlockCredits < 0 {
			return domain.ErrInvalidArgument
		}
		return nil
	case ServiceTypeVPDUnlock:
		if a.CompanyID == "" || a.CompanyName == "" {
			return domain.ErrInvalidArgument
		}
		return nil
	case ServiceTypeOneTime, ServiceTypeCompliance:
		return nil
	default:
		return domain.ErrUnknownServiceType
	}
}

// BulkCredits returns the requested bulk credit count for unlock types.
func (a FulfillmentAttrs) BulkCredits(st ServiceType) int {
	switch st {
	case ServiceTypeDirectorUnlock:
		return a.BulkUnlockCredits
	case ServiceTypeCompanyUnlock:
		return a.CompanyUnlockCredits
	default:
		return 0
	}
}

// CartItem is the client-submitted, untrusted shape of a line item. It never
// carries a price; prices are always recomputed from the catalog.
type CartItem struct {
	ServiceID string           `json:"service_id"`
	Quantity  int              `json:"quantity"`
	Attrs     FulfillmentAttrs `json:"attributes"`
}

// VerifiedOrderItem is the server-computed line item: unit price and quantity
// are authoritative, derived only from catalog state and the requested
// attributes.
type VerifiedOrderItem struct {
	ServiceID   string           `json:"service_id"`
	ServiceName string           `json:"service_name"`
	ServiceType ServiceType      `json:"service_type"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Quantity    int              `json:"quantity"`
	Currency    string           `json:"currency"`
	Attrs       FulfillmentAttrs `json:"attributes"`
}

// LineTotal is UnitPrice multiplied by the authoritative quantity.
func (i VerifiedOrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

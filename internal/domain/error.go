package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrConflict           = errors.New("conflicting state")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context for query")

	// Pricing / cart errors
	ErrUnknownServiceType  = errors.New("unknown service type")
	ErrUnpricedServiceType = errors.New("service type has no pricing rules")
	ErrMissingPricing      = errors.New("pricing table missing for requested currency")
	ErrZoneNotCovered      = errors.New("zone has no rate for requested plan")
	ErrNoBulkTier          = errors.New("no bulk tier matches requested credit count")
	ErrUnfulfillableItem   = errors.New("item attributes do not match any fulfillment rule")

	// Coupon errors
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponInactive      = errors.New("coupon is not active")
	ErrCouponExpired       = errors.New("coupon has expired")
	ErrCouponExhausted     = errors.New("coupon redemption limit reached")
	ErrCouponMinOrderValue = errors.New("order value below coupon minimum")
	ErrCouponNotFirstOrder = errors.New("coupon is valid for first-time customers only")
	ErrCouponUserNotValid  = errors.New("coupon is not valid for this user")
	ErrCouponUserExhausted = errors.New("per-user coupon redemption limit reached")
	ErrCouponServiceScope  = errors.New("coupon does not cover every service in the cart")

	// Order / payment errors
	ErrOrderNotFound       = errors.New("order not found in payment system")
	ErrAlreadyProcessed    = errors.New("order already processed")
	ErrAlreadyUnlocked     = errors.New("company already unlocked")
	ErrInsufficientCredits = errors.New("insufficient unlock credits")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
	ErrVerificationFailed  = errors.New("failed to verify payment")
)

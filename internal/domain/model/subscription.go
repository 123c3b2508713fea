package model

import (
	"time"

	"corpdata-commerce/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Subscription is a user's entitlement to a subscription service for a set of
// zones. OrderID carries a unique constraint: at most one subscription may be
// created per paid order, which is what makes fulfillment replays safe.
type Subscription struct {
	ID        string // UUID
	UserID    string
	ServiceID string
	OrderID   string
	Plan      Plan
	Zones     []string
	StartAt   time.Time
	ExpiresAt time.Time
	Status    SubscriptionStatus
	CreatedAt time.Time
}

// NewSubscription constructs an active subscription starting now.
func NewSubscription(id, userID, serviceID, orderID string, plan Plan, zones []string) (*Subscription, error) {
	if id == "" || userID == "" || serviceID == "" || orderID == "" || len(zones) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	dur, err := PlanDuration(plan)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Subscription{
		ID:        id,
		UserID:    userID,
		ServiceID: serviceID,
		OrderID:   orderID,
		Plan:      plan,
		Zones:     zones,
		StartAt:   now,
		ExpiresAt: now.Add(dur),
		Status:    SubscriptionStatusActive,
		CreatedAt: now,
	}, nil
}

// IsTrial reports whether this subscription was bought on the trial plan.
// Used for marketing audience tagging (trial vs fullplan).
func (s *Subscription) IsTrial() bool { return s.Plan == PlanTrial }

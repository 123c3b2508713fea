package model

import (
	"time"

	"corpdata-commerce/internal/domain"
)

type OutboxEventType string

const (
	OutboxEventEmail       OutboxEventType = "email"
	OutboxEventWhatsApp    OutboxEventType = "whatsapp"
	OutboxEventAudienceTag OutboxEventType = "audience_tag"
)

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "pending"
	OutboxStatusSent    OutboxStatus = "sent"
	OutboxStatusFailed  OutboxStatus = "failed"
)

// OutboxEvent is a notification side effect recorded in the same transaction
// as the financial state change that caused it, and delivered afterwards with
// at-least-once semantics. Payment truth never rolls back because a
// notification provider is down.
type OutboxEvent struct {
	ID        string // UUID
	OrderID   string
	Type      OutboxEventType
	Payload   map[string]interface{} // serialized as JSONB
	Status    OutboxStatus
	Attempts  int
	CreatedAt time.Time
	SentAt    *time.Time
}

// NewOutboxEvent constructs a pending event.
func NewOutboxEvent(id, orderID string, typ OutboxEventType, payload map[string]interface{}) (*OutboxEvent, error) {
	if id == "" || typ == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &OutboxEvent{
		ID:        id,
		OrderID:   orderID,
		Type:      typ,
		Payload:   payload,
		Status:    OutboxStatusPending,
		CreatedAt: time.Now(),
	}, nil
}

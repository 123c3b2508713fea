package model

import (
	"time"

	"corpdata-commerce/internal/domain"
)

type CreditType string

const (
	CreditTypeDirector CreditType = "director"
	CreditTypeCompany  CreditType = "company"
)

// CreditGrant is a batch of consumable unlock credits granted to a user,
// valid until ExpiresAt.
type CreditGrant struct {
	ID        string // UUID
	UserID    string
	OrderID   string
	Type      CreditType
	Credits   int
	Remaining int
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewCreditGrant constructs a grant of `credits` credits expiring after
// expiryDays.
func NewCreditGrant(id, userID, orderID string, typ CreditType, credits, expiryDays int) (*CreditGrant, error) {
	if id == "" || userID == "" || credits <= 0 || expiryDays <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &CreditGrant{
		ID:        id,
		UserID:    userID,
		OrderID:   orderID,
		Type:      typ,
		Credits:   credits,
		Remaining: credits,
		ExpiresAt: now.Add(time.Duration(expiryDays) * 24 * time.Hour),
		CreatedAt: now,
	}, nil
}

type UnlockJobStatus string

const (
	UnlockJobStatusQueued UnlockJobStatus = "queued"
	UnlockJobStatusDone   UnlockJobStatus = "done"
	UnlockJobStatusFailed UnlockJobStatus = "failed"
)

// UnlockJob is an async public-document unlock request processed out of band.
type UnlockJob struct {
	ID          string // UUID
	UserID      string
	OrderID     string
	CompanyID   string
	CompanyName string
	Status      UnlockJobStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UnlockedCompany records a company unlocked for a user. A unique constraint
// on (user_id, company_id) prevents double unlocks. Pending entries are
// placeholders written alongside an unlock job before it completes.
type UnlockedCompany struct {
	ID          string // UUID
	UserID      string
	CompanyID   string
	CompanyName string
	Pending     bool
	CreatedAt   time.Time
}

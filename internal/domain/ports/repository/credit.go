package repository

import (
	"context"

	"corpdata-commerce/internal/domain/model"
)

// CreditRepository stores unlock credit grants.
type CreditRepository interface {
	Grant(ctx context.Context, tx Tx, g *model.CreditGrant) error
	// ConsumeOne atomically decrements one unexpired credit of the given type.
	// Returns domain.ErrInsufficientCredits when none remain.
	ConsumeOne(ctx context.Context, tx Tx, userID string, typ model.CreditType) error
}

// UnlockRepository stores unlock jobs and per-user unlocked companies.
type UnlockRepository interface {
	CreateJob(ctx context.Context, tx Tx, j *model.UnlockJob) error
	// CreateUnlockedCompany inserts against a unique (user_id, company_id)
	// index; duplicates surface domain.ErrConflict.
	CreateUnlockedCompany(ctx context.Context, tx Tx, u *model.UnlockedCompany) error
}

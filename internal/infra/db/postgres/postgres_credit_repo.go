package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/domain/model"
	"corpdata-commerce/internal/domain/ports/repository"
)

var (
	_ repository.CreditRepository = (*creditRepo)(nil)
	_ repository.UnlockRepository = (*unlockRepo)(nil)
)

type creditRepo struct{ pool *pgxpool.Pool }

func NewCreditRepo(pool *pgxpool.Pool) *creditRepo {
	return &creditRepo{pool: pool}
}

func (r *creditRepo) Grant(ctx context.Context, tx repository.Tx, g *model.CreditGrant) error {
	const q = `
INSERT INTO credit_grants (id, user_id, order_id, type, credits, remaining, expires_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	_, err := execSQL(ctx, r.pool, tx, q,
		g.ID, g.UserID, g.OrderID, g.Type, g.Credits, g.Remaining, g.ExpiresAt, g.CreatedAt)
	return translateErr(err)
}

// ConsumeOne decrements one credit from the soonest-expiring unexpired grant.
// The decrement is a single statement with a guarded subselect, so concurrent
// consumers cannot drive remaining below zero.
func (r *creditRepo) ConsumeOne(ctx context.Context, tx repository.Tx, userID string, typ model.CreditType) error {
	const q = `
UPDATE credit_grants
   SET remaining = remaining - 1
 WHERE id = (
       SELECT id FROM credit_grants
        WHERE user_id=$1 AND type=$2 AND remaining > 0 AND expires_at > NOW()
        ORDER BY expires_at ASC
        LIMIT 1
        FOR UPDATE SKIP LOCKED
 );`
	cmd, err := execSQL(ctx, r.pool, tx, q, userID, typ)
	if err != nil {
		return translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInsufficientCredits
	}
	return nil
}

type unlockRepo struct{ pool *pgxpool.Pool }

func NewUnlockRepo(pool *pgxpool.Pool) *unlockRepo {
	return &unlockRepo{pool: pool}
}

func (r *unlockRepo) CreateJob(ctx context.Context, tx repository.Tx, j *model.UnlockJob) error {
	const q = `
INSERT INTO unlock_jobs (id, user_id, order_id, company_id, company_name, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	_, err := execSQL(ctx, r.pool, tx, q,
		j.ID, j.UserID, j.OrderID, j.CompanyID, j.CompanyName, j.Status, j.CreatedAt, j.UpdatedAt)
	return translateErr(err)
}

// CreateUnlockedCompany inserts against the unique (user_id, company_id)
// index; duplicates surface domain.ErrConflict.
func (r *unlockRepo) CreateUnlockedCompany(ctx context.Context, tx repository.Tx, u *model.UnlockedCompany) error {
	const q = `
INSERT INTO unlocked_companies (id, user_id, company_id, company_name, pending, created_at)
VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := execSQL(ctx, r.pool, tx, q,
		u.ID, u.UserID, u.CompanyID, u.CompanyName, u.Pending, u.CreatedAt)
	return translateErr(err)
}

// FindUnlockedCompany reports an existing unlock for the user, locked when in a tx.
func (r *unlockRepo) FindUnlockedCompany(ctx context.Context, tx repository.Tx, userID, companyID string) (*model.UnlockedCompany, error) {
	q := `SELECT id, user_id, company_id, company_name, pending, created_at
FROM unlocked_companies WHERE user_id=$1 AND company_id=$2`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, userID, companyID)
	if err != nil {
		return nil, err
	}
	u := &model.UnlockedCompany{}
	if err := row.Scan(&u.ID, &u.UserID, &u.CompanyID, &u.CompanyName, &u.Pending, &u.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return u, nil
}

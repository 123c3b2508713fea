package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/domain/model"
	"corpdata-commerce/internal/domain/ports/repository"
)

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct{ pool *pgxpool.Pool }

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subscriptionColumns = `id, user_id, service_id, order_id, plan, zones, start_at, expires_at, status, created_at`

// Create inserts against the unique order_id index. A duplicate surfaces
// domain.ErrConflict, which fulfillment treats as already-created.
func (r *subscriptionRepo) Create(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (id, user_id, service_id, order_id, plan, zones, start_at, expires_at, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`
	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.UserID, s.ServiceID, s.OrderID, s.Plan, s.Zones, s.StartAt, s.ExpiresAt, s.Status, s.CreatedAt)
	return translateErr(err)
}

func (r *subscriptionRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.Subscription, error) {
	const q = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE order_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, orderID)
	if err != nil {
		return nil, err
	}
	return scanSubscription(row)
}

func (r *subscriptionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	const q = `SELECT ` + subscriptionColumns + ` FROM subscriptions
WHERE user_id=$1 AND status='active' AND expires_at > NOW()
ORDER BY expires_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

func (r *subscriptionRepo) ListActive(ctx context.Context, tx repository.Tx, limit, offset int) ([]*model.Subscription, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + subscriptionColumns + ` FROM subscriptions
WHERE status='active' AND expires_at > NOW()
ORDER BY created_at ASC LIMIT $1 OFFSET $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, limit, offset)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	s := &model.Subscription{}
	if err := row.Scan(&s.ID, &s.UserID, &s.ServiceID, &s.OrderID, &s.Plan, &s.Zones,
		&s.StartAt, &s.ExpiresAt, &s.Status, &s.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

func scanSubscriptions(rows pgx.Rows) ([]*model.Subscription, error) {
	var out []*model.Subscription
	for rows.Next() {
		s := &model.Subscription{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.ServiceID, &s.OrderID, &s.Plan, &s.Zones,
			&s.StartAt, &s.ExpiresAt, &s.Status, &s.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

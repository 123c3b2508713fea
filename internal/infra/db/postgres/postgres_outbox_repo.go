package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/domain/model"
	"corpdata-commerce/internal/domain/ports/repository"
)

var _ repository.OutboxRepository = (*outboxRepo)(nil)

type outboxRepo struct{ pool *pgxpool.Pool }

func NewOutboxRepo(pool *pgxpool.Pool) *outboxRepo {
	return &outboxRepo{pool: pool}
}

func (r *outboxRepo) Enqueue(ctx context.Context, tx repository.Tx, e *model.OutboxEvent) error {
	const q = `
INSERT INTO outbox_events (id, order_id, type, payload, status, attempts, created_at, sent_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return err
	}
	_, err = execSQL(ctx, r.pool, tx, q,
		e.ID, e.OrderID, e.Type, payload, e.Status, e.Attempts, e.CreatedAt, e.SentAt)
	return translateErr(err)
}

// ListPending returns the oldest undelivered events. Inside a transaction the
// rows are locked with SKIP LOCKED so concurrent dispatchers never pick the
// same batch.
func (r *outboxRepo) ListPending(ctx context.Context, tx repository.Tx, limit int) ([]*model.OutboxEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT id, order_id, type, payload, status, attempts, created_at, sent_at
FROM outbox_events WHERE status='pending' ORDER BY created_at ASC LIMIT $1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE SKIP LOCKED"
	}
	q += ";"
	rows, err := queryRows(ctx, r.pool, tx, q, limit)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var out []*model.OutboxEvent
	for rows.Next() {
		e := &model.OutboxEvent{}
		var payload []byte
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Type, &payload, &e.Status, &e.Attempts, &e.CreatedAt, &e.SentAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e.Payload); err != nil {
				return nil, domain.ErrReadDatabaseRow
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *outboxRepo) MarkSent(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE outbox_events SET status='sent', attempts=attempts+1, sent_at=NOW() WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *outboxRepo) MarkFailed(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE outbox_events SET status='failed', attempts=attempts+1 WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

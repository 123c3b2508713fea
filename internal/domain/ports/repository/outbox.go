package repository

import (
	"context"

	"corpdata-commerce/internal/domain/model"
)

// OutboxRepository stores notification events pending delivery.
type OutboxRepository interface {
	Enqueue(ctx context.Context, tx Tx, e *model.OutboxEvent) error
	ListPending(ctx context.Context, tx Tx, limit int) ([]*model.OutboxEvent, error)
	MarkSent(ctx context.Context, tx Tx, id string) error
	MarkFailed(ctx context.Context, tx Tx, id string) error
}

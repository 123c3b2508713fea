// File: internal/usecase/accounting_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"corpdata-commerce/internal/domain/ports/adapter"
	"corpdata-commerce/internal/domain/ports/repository"
)

// AccountingSyncUseCase pushes paid, not-yet-invoiced orders to the books and
// records the assigned invoice number. Per-order failures are logged and
// skipped, never aborting the batch; a fixed pause between batches throttles
// the accounting API.
type AccountingSyncUseCase struct {
	orders     repository.OrderRepository
	accounting adapter.AccountingSync
	log        *zerolog.Logger
}

func NewAccountingSyncUseCase(orders repository.OrderRepository, accounting adapter.AccountingSync, logger *zerolog.Logger) *AccountingSyncUseCase {
	compLog := logger.With().Str("component", "AccountingSyncUseCase").Logger()
	return &AccountingSyncUseCase{orders: orders, accounting: accounting, log: &compLog}
}

// SyncInvoices processes paid uninvoiced orders in batches of batchSize until
// the backlog drains, sleeping pause between batches.
func (uc *AccountingSyncUseCase) SyncInvoices(ctx context.Context, sess *SyncSession, batchSize int, pause time.Duration) error {
	if batchSize <= 0 {
		batchSize = 50
	}
	for {
		batch, err := uc.orders.ListPaidUninvoiced(ctx, nil, batchSize)
		if err != nil {
			return fmt.Errorf("list uninvoiced orders: %w", err)
		}
		if len(batch) == 0 {
			return nil
		}

		progressed := false
		for _, o := range batch {
			if sess.Seen(o.ID) {
				continue
			}
			progressed = true
			invoiceNumber, err := uc.accounting.CreateInvoice(ctx, o)
			if err != nil {
				uc.log.Warn().Err(err).Str("order_id", o.ID).Msg("invoice creation failed")
				sess.MarkFailed(o.ID)
				continue
			}
			if err := uc.orders.SetInvoice(ctx, nil, o.ID, invoiceNumber, time.Now()); err != nil {
				uc.log.Error().Err(err).Str("order_id", o.ID).Msg("record invoice failed")
				sess.MarkFailed(o.ID)
				continue
			}
			sess.MarkSynced(o.ID)
		}
		// Everything left in the backlog already failed this session.
		if !progressed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pause):
		}
	}
}

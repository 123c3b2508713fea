package adapter

import (
	"context"

	"corpdata-commerce/internal/domain/model"
)

// AccountingSync pushes paid orders to the books (Zoho-Books-shaped) and
// returns the provider invoice number.
type AccountingSync interface {
	CreateInvoice(ctx context.Context, o *model.Order) (invoiceNumber string, err error)
}

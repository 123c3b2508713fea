package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/domain/model"
	"corpdata-commerce/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepo(pool *pgxpool.Pool) *orderRepo {
	return &orderRepo{pool: pool}
}

const orderColumns = `id, user_id, items, currency, value, gst, discount_amount, coupon,
customer_email, customer_phone, status, payment_id, gateway_order_id, gateway,
is_processed, invoice_number, invoiced_at, created_at, updated_at`

func (r *orderRepo) Create(ctx context.Context, tx repository.Tx, o *model.Order) error {
	const q = `
INSERT INTO orders (
  id, user_id, items, currency, value, gst, discount_amount, coupon,
  customer_email, customer_phone, status, payment_id, gateway_order_id, gateway,
  is_processed, invoice_number, invoiced_at, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19
);`
	items, coupon, err := marshalOrderJSON(o)
	if err != nil {
		return err
	}
	_, err = execSQL(ctx, r.pool, tx, q,
		o.ID, o.UserID, items, o.Currency, o.Value, o.GST, o.DiscountAmount, coupon,
		o.CustomerEmail, o.CustomerPhone, o.Status, o.PaymentID, o.GatewayOrderID, o.Gateway,
		o.IsProcessed, o.InvoiceNumber, o.InvoicedAt, o.CreatedAt, o.UpdatedAt)
	return translateErr(err)
}

func (r *orderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	const q = `
UPDATE orders SET
  status=$2, payment_id=$3, is_processed=$4, coupon=$5,
  invoice_number=$6, invoiced_at=$7, updated_at=NOW()
WHERE id=$1;`
	_, coupon, err := marshalOrderJSON(o)
	if err != nil {
		return err
	}
	cmd, err := execSQL(ctx, r.pool, tx, q,
		o.ID, o.Status, o.PaymentID, o.IsProcessed, coupon, o.InvoiceNumber, o.InvoicedAt)
	if err != nil {
		return translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanOrder(row)
}

// FindByGatewayOrderID locks the row when called inside a transaction, which
// serializes concurrent confirmation attempts against the same order.
func (r *orderRepo) FindByGatewayOrderID(ctx context.Context, tx repository.Tx, gatewayOrderID string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE gateway_order_id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, gatewayOrderID)
	if err != nil {
		return nil, err
	}
	return scanOrder(row)
}

func (r *orderRepo) CountPaidByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM orders WHERE user_id=$1 AND status='PAID';`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *orderRepo) CountPaidByUserAndCoupon(ctx context.Context, tx repository.Tx, userID, couponCode string) (int, error) {
	const q = `SELECT COUNT(*) FROM orders WHERE user_id=$1 AND status='PAID' AND coupon->>'code'=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, couponCode)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *orderRepo) ListStaleUnsettled(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + orderColumns + ` FROM orders
WHERE status IN ('CREATED','PENDING','UNKNOWN') AND created_at < $1
ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *orderRepo) ListPaidUninvoiced(ctx context.Context, tx repository.Tx, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + orderColumns + ` FROM orders
WHERE status='PAID' AND invoice_number IS NULL
ORDER BY created_at ASC LIMIT $1;`
	rows, err := queryRows(ctx, r.pool, tx, q, limit)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *orderRepo) SetInvoice(ctx context.Context, tx repository.Tx, orderID, invoiceNumber string, invoicedAt time.Time) error {
	const q = `UPDATE orders SET invoice_number=$2, invoiced_at=$3, updated_at=NOW() WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, orderID, invoiceNumber, invoicedAt)
	if err != nil {
		return translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func marshalOrderJSON(o *model.Order) (items []byte, coupon []byte, err error) {
	items, err = json.Marshal(o.Items)
	if err != nil {
		return nil, nil, err
	}
	if o.Coupon != nil {
		coupon, err = json.Marshal(o.Coupon)
		if err != nil {
			return nil, nil, err
		}
	}
	return items, coupon, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	o := &model.Order{}
	var items, coupon []byte
	if err := row.Scan(&o.ID, &o.UserID, &items, &o.Currency, &o.Value, &o.GST, &o.DiscountAmount, &coupon,
		&o.CustomerEmail, &o.CustomerPhone, &o.Status, &o.PaymentID, &o.GatewayOrderID, &o.Gateway,
		&o.IsProcessed, &o.InvoiceNumber, &o.InvoicedAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	if len(coupon) > 0 {
		o.Coupon = &model.AppliedCoupon{}
		if err := json.Unmarshal(coupon, o.Coupon); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	return o, nil
}

func scanOrders(rows pgx.Rows) ([]*model.Order, error) {
	var out []*model.Order
	for rows.Next() {
		o := &model.Order{}
		var items, coupon []byte
		if err := rows.Scan(&o.ID, &o.UserID, &items, &o.Currency, &o.Value, &o.GST, &o.DiscountAmount, &coupon,
			&o.CustomerEmail, &o.CustomerPhone, &o.Status, &o.PaymentID, &o.GatewayOrderID, &o.Gateway,
			&o.IsProcessed, &o.InvoiceNumber, &o.InvoicedAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		if len(coupon) > 0 {
			o.Coupon = &model.AppliedCoupon{}
			if err := json.Unmarshal(coupon, o.Coupon); err != nil {
				return nil, domain.ErrReadDatabaseRow
			}
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

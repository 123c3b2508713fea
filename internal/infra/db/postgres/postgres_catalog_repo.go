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

var _ repository.CatalogRepository = (*catalogRepo)(nil)

// catalogRepo stores the service catalog. Pricing tables are JSONB: their
// shape varies by service type and currency, and the domain model already
// carries the typed view.
type catalogRepo struct{ pool *pgxpool.Pool }

func NewCatalogRepo(pool *pgxpool.Pool) *catalogRepo {
	return &catalogRepo{pool: pool}
}

func (r *catalogRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ServiceCatalogEntry, error) {
	const q = `SELECT id, name, type, subscription_pricing, unlock_pricing, created_at, updated_at
FROM services WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanService(row)
}

func (r *catalogRepo) Save(ctx context.Context, tx repository.Tx, entry *model.ServiceCatalogEntry) error {
	const q = `
INSERT INTO services (id, name, type, subscription_pricing, unlock_pricing, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
ON CONFLICT (id) DO UPDATE SET
  name=$2, type=$3, subscription_pricing=$4, unlock_pricing=$5, updated_at=NOW();`
	sub, err := json.Marshal(entry.Subscription)
	if err != nil {
		return err
	}
	unlock, err := json.Marshal(entry.Unlock)
	if err != nil {
		return err
	}
	_, err = execSQL(ctx, r.pool, tx, q, entry.ID, entry.Name, entry.Type, sub, unlock)
	return translateErr(err)
}

func (r *catalogRepo) List(ctx context.Context, tx repository.Tx) ([]*model.ServiceCatalogEntry, error) {
	const q = `SELECT id, name, type, subscription_pricing, unlock_pricing, created_at, updated_at
FROM services ORDER BY id;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var out []*model.ServiceCatalogEntry
	for rows.Next() {
		e := &model.ServiceCatalogEntry{}
		var sub, unlock []byte
		if err := rows.Scan(&e.ID, &e.Name, &e.Type, &sub, &unlock, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		if err := unmarshalPricing(e, sub, unlock); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanService(row pgx.Row) (*model.ServiceCatalogEntry, error) {
	e := &model.ServiceCatalogEntry{}
	var sub, unlock []byte
	if err := row.Scan(&e.ID, &e.Name, &e.Type, &sub, &unlock, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if err := unmarshalPricing(e, sub, unlock); err != nil {
		return nil, err
	}
	return e, nil
}

func unmarshalPricing(e *model.ServiceCatalogEntry, sub, unlock []byte) error {
	if len(sub) > 0 {
		if err := json.Unmarshal(sub, &e.Subscription); err != nil {
			return domain.ErrReadDatabaseRow
		}
	}
	if len(unlock) > 0 {
		if err := json.Unmarshal(unlock, &e.Unlock); err != nil {
			return domain.ErrReadDatabaseRow
		}
	}
	return nil
}

package repository

import (
	"context"

	"corpdata-commerce/internal/domain/model"
)

// CatalogRepository stores purchasable service definitions.
type CatalogRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.ServiceCatalogEntry, error)
	Save(ctx context.Context, tx Tx, entry *model.ServiceCatalogEntry) error
	List(ctx context.Context, tx Tx) ([]*model.ServiceCatalogEntry, error)
}

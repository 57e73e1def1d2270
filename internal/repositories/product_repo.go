package repositories

import (
	"context"

	"katalog/internal/models"
)

// ProductRepository defines the interface for product data access.
//
// Update is a compare-and-set on Version: it succeeds only while the stored
// version still equals product.Version, and on success bumps it by one. A
// stale version yields models.ErrVersionConflict.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByCategory(ctx context.Context, categoryID string) ([]models.Product, error)
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
	CountByManufacturer(ctx context.Context, manufacturerID string) (int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

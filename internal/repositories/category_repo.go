package repositories

import (
	"context"

	"katalog/internal/models"
)

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}

// ManufacturerRepository defines the interface for manufacturer data access.
type ManufacturerRepository interface {
	GetAll(ctx context.Context) ([]models.Manufacturer, error)
	GetByID(ctx context.Context, id string) (*models.Manufacturer, error)
	GetByName(ctx context.Context, name string) (*models.Manufacturer, error)
	Create(ctx context.Context, manufacturer *models.Manufacturer) error
	Delete(ctx context.Context, id string) error
}

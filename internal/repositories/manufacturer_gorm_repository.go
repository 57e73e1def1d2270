package repositories

import (
	"context"
	"errors"
	"fmt"

	"katalog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMManufacturerRepository is a GORM implementation of ManufacturerRepository.
type GORMManufacturerRepository struct {
	db *gorm.DB
}

// NewGORMManufacturerRepository creates a new instance of GORMManufacturerRepository.
func NewGORMManufacturerRepository(db *gorm.DB) *GORMManufacturerRepository {
	return &GORMManufacturerRepository{db: db}
}

// GetAll retrieves all manufacturers ordered by name.
func (r *GORMManufacturerRepository) GetAll(ctx context.Context) ([]models.Manufacturer, error) {
	manufacturers := []models.Manufacturer{}
	if err := r.db.WithContext(ctx).Order("name").Find(&manufacturers).Error; err != nil {
		return nil, fmt.Errorf("failed to get all manufacturers: %w", err)
	}
	return manufacturers, nil
}

// GetByID retrieves a manufacturer by its ID.
func (r *GORMManufacturerRepository) GetByID(ctx context.Context, id string) (*models.Manufacturer, error) {
	var manufacturer models.Manufacturer
	if err := r.db.WithContext(ctx).First(&manufacturer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewCatalogError(models.KindManufacturerNotFound, "manufacturer with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get manufacturer by ID %s: %w", id, err)
	}
	return &manufacturer, nil
}

// GetByName retrieves a manufacturer by its unique name.
func (r *GORMManufacturerRepository) GetByName(ctx context.Context, name string) (*models.Manufacturer, error) {
	var manufacturer models.Manufacturer
	if err := r.db.WithContext(ctx).First(&manufacturer, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewCatalogError(models.KindManufacturerNotFound, "manufacturer named %q not found", name)
		}
		return nil, fmt.Errorf("failed to get manufacturer by name %q: %w", name, err)
	}
	return &manufacturer, nil
}

// Create creates a new manufacturer. A name collision maps to ErrManufacturerExists.
func (r *GORMManufacturerRepository) Create(ctx context.Context, manufacturer *models.Manufacturer) error {
	if manufacturer.ID == "" {
		manufacturer.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(manufacturer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewCatalogError(models.KindManufacturerExists, "manufacturer %q already exists", manufacturer.Name)
		}
		return fmt.Errorf("failed to create manufacturer: %w", err)
	}
	return nil
}

// Delete deletes a manufacturer no product references.
func (r *GORMManufacturerRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Manufacturer{}, "id = ?", id)
	if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
		return models.NewCatalogError(models.KindManufacturerInUse, "manufacturer %s is referenced by products", id)
	}
	if res.Error != nil {
		return fmt.Errorf("failed to delete manufacturer: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewCatalogError(models.KindManufacturerNotFound, "manufacturer with ID %s not found for deletion", id)
	}
	return nil
}

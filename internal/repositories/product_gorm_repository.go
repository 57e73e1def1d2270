package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"katalog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database, oldest first.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewCatalogError(models.KindProductNotFound, "product with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetByCategory retrieves every product referencing the given category.
func (r *GORMProductRepository) GetByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	products := []models.Product{}
	if err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Order("created_at, id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products for category %s: %w", categoryID, err)
	}
	return products, nil
}

// CountByCategory counts the products referencing the given category.
func (r *GORMProductRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", categoryID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products for category %s: %w", categoryID, err)
	}
	return n, nil
}

// CountByManufacturer counts the products referencing the given manufacturer.
func (r *GORMProductRepository) CountByManufacturer(ctx context.Context, manufacturerID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("manufacturer_id = ?", manufacturerID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products for manufacturer %s: %w", manufacturerID, err)
	}
	return n, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.Images == nil {
		product.Images = []string{}
	}
	product.Version = 1
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return r.missingReference(ctx, product)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes product if the stored version still matches product.Version.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	next := *product
	next.Version = product.Version + 1
	next.UpdatedAt = time.Now()
	if next.Images == nil {
		next.Images = []string{}
	}

	res := r.db.WithContext(ctx).Model(&models.Product{ID: product.ID}).
		Where("version = ?", product.Version).
		Select("name", "category_id", "manufacturer_id", "price", "stock_level", "description", "images", "version", "updated_at").
		Updates(&next)
	if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
		return r.missingReference(ctx, &next)
	}
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the row is gone or someone else bumped the version first.
		var n int64
		if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", product.ID).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		if n == 0 {
			return models.NewCatalogError(models.KindProductNotFound, "product with ID %s not found for update", product.ID)
		}
		return models.ErrVersionConflict
	}

	*product = next
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewCatalogError(models.KindProductNotFound, "product with ID %s not found for deletion", id)
	}
	return nil
}

// missingReference reports which of product's references a foreign key
// violation was caused by.
func (r *GORMProductRepository) missingReference(ctx context.Context, product *models.Product) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", product.CategoryID).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check category reference: %w", err)
	}
	if n == 0 {
		return models.NewCatalogError(models.KindCategoryNotFound, "category with ID %s not found", product.CategoryID)
	}
	return models.NewCatalogError(models.KindManufacturerNotFound, "manufacturer with ID %s not found", product.ManufacturerID)
}

package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"katalog/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products, oldest first.
func (r *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.filter(func(models.Product) bool { return true }), nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, models.NewCatalogError(models.KindProductNotFound, "product with ID %s not found", id)
	}
	product.Images = append([]string(nil), product.Images...)
	return &product, nil
}

// GetByCategory returns the products referencing categoryID.
func (r *MockProductRepository) GetByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	return r.filter(func(p models.Product) bool { return p.CategoryID == categoryID }), nil
}

// CountByCategory counts the products referencing categoryID.
func (r *MockProductRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	return int64(len(r.filter(func(p models.Product) bool { return p.CategoryID == categoryID }))), nil
}

// CountByManufacturer counts the products referencing manufacturerID.
func (r *MockProductRepository) CountByManufacturer(ctx context.Context, manufacturerID string) (int64, error) {
	return int64(len(r.filter(func(p models.Product) bool { return p.ManufacturerID == manufacturerID }))), nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.Images == nil {
		product.Images = []string{}
	}
	now := time.Now()
	product.Version = 1
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update replaces a product when its version matches the stored one.
func (r *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[product.ID]
	if !ok {
		return models.NewCatalogError(models.KindProductNotFound, "product with ID %s not found for update", product.ID)
	}
	if stored.Version != product.Version {
		return models.ErrVersionConflict
	}
	product.Version++
	product.CreatedAt = stored.CreatedAt
	product.UpdatedAt = time.Now()
	if product.Images == nil {
		product.Images = []string{}
	}
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if !ok {
		return models.NewCatalogError(models.KindProductNotFound, "product with ID %s not found for deletion", id)
	}
	delete(r.products, id)
	return nil
}

func (r *MockProductRepository) filter(keep func(models.Product) bool) []models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if keep(p) {
			productList = append(productList, p)
		}
	}
	sort.Slice(productList, func(i, j int) bool {
		if productList[i].CreatedAt.Equal(productList[j].CreatedAt) {
			return productList[i].ID < productList[j].ID
		}
		return productList[i].CreatedAt.Before(productList[j].CreatedAt)
	})
	return productList
}

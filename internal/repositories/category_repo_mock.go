package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"katalog/internal/models"

	"github.com/google/uuid"
)

// MockCategoryRepository is an in-memory implementation of CategoryRepository.
type MockCategoryRepository struct {
	categories map[string]models.Category
	mu         sync.RWMutex
}

// NewMockCategoryRepository creates a new instance of MockCategoryRepository.
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		categories: make(map[string]models.Category),
	}
}

// GetAll returns all categories ordered by name.
func (r *MockCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categoryList := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categoryList = append(categoryList, c)
	}
	sort.Slice(categoryList, func(i, j int) bool { return categoryList[i].Name < categoryList[j].Name })
	return categoryList, nil
}

// GetByID retrieves a category by its ID.
func (r *MockCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[id]
	if !ok {
		return nil, models.NewCatalogError(models.KindCategoryNotFound, "category with ID %s not found", id)
	}
	return &category, nil
}

// GetByName retrieves a category by its name.
func (r *MockCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.categories {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, models.NewCatalogError(models.KindCategoryNotFound, "category named %q not found", name)
}

// Create adds a new category with a unique name.
func (r *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(category.Name, "") {
		return models.NewCatalogError(models.KindCategoryExists, "category %q already exists", category.Name)
	}
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	r.categories[category.ID] = *category
	return nil
}

// Update replaces an existing category.
func (r *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.categories[category.ID]
	if !ok {
		return models.NewCatalogError(models.KindCategoryNotFound, "category with ID %s not found for update", category.ID)
	}
	if r.nameTaken(category.Name, category.ID) {
		return models.NewCatalogError(models.KindCategoryExists, "category %q already exists", category.Name)
	}
	category.CreatedAt = stored.CreatedAt
	category.UpdatedAt = time.Now()
	r.categories[category.ID] = *category
	return nil
}

// Delete removes a category by its ID.
func (r *MockCategoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return models.NewCatalogError(models.KindCategoryNotFound, "category with ID %s not found for deletion", id)
	}
	delete(r.categories, id)
	return nil
}

// nameTaken must be called with mu held.
func (r *MockCategoryRepository) nameTaken(name, exceptID string) bool {
	for id, c := range r.categories {
		if c.Name == name && id != exceptID {
			return true
		}
	}
	return false
}

// MockManufacturerRepository is an in-memory implementation of ManufacturerRepository.
type MockManufacturerRepository struct {
	manufacturers map[string]models.Manufacturer
	mu            sync.RWMutex
}

// NewMockManufacturerRepository creates a new instance of MockManufacturerRepository.
func NewMockManufacturerRepository() *MockManufacturerRepository {
	return &MockManufacturerRepository{
		manufacturers: make(map[string]models.Manufacturer),
	}
}

// GetAll returns all manufacturers ordered by name.
func (r *MockManufacturerRepository) GetAll(ctx context.Context) ([]models.Manufacturer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Manufacturer, 0, len(r.manufacturers))
	for _, m := range r.manufacturers {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// GetByID retrieves a manufacturer by its ID.
func (r *MockManufacturerRepository) GetByID(ctx context.Context, id string) (*models.Manufacturer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.manufacturers[id]
	if !ok {
		return nil, models.NewCatalogError(models.KindManufacturerNotFound, "manufacturer with ID %s not found", id)
	}
	return &m, nil
}

// GetByName retrieves a manufacturer by its name.
func (r *MockManufacturerRepository) GetByName(ctx context.Context, name string) (*models.Manufacturer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.manufacturers {
		if m.Name == name {
			return &m, nil
		}
	}
	return nil, models.NewCatalogError(models.KindManufacturerNotFound, "manufacturer named %q not found", name)
}

// Create adds a new manufacturer with a unique name.
func (r *MockManufacturerRepository) Create(ctx context.Context, manufacturer *models.Manufacturer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.manufacturers {
		if m.Name == manufacturer.Name {
			return models.NewCatalogError(models.KindManufacturerExists, "manufacturer %q already exists", manufacturer.Name)
		}
	}
	if manufacturer.ID == "" {
		manufacturer.ID = uuid.New().String()
	}
	manufacturer.CreatedAt = time.Now()
	manufacturer.UpdatedAt = manufacturer.CreatedAt
	r.manufacturers[manufacturer.ID] = *manufacturer
	return nil
}

// Delete removes a manufacturer by its ID.
func (r *MockManufacturerRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.manufacturers[id]; !ok {
		return models.NewCatalogError(models.KindManufacturerNotFound, "manufacturer with ID %s not found for deletion", id)
	}
	delete(r.manufacturers, id)
	return nil
}

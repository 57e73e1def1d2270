package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"katalog/internal/models"
	"katalog/internal/repositories"

	"github.com/rs/zerolog"
)

// CategoryPatch lists the category fields to change. Nil or empty values keep
// the stored value.
type CategoryPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

// CategoryService handles business logic related to categories. A category
// referenced by any product cannot be deleted.
type CategoryService struct {
	repo      repositories.CategoryRepository
	products  repositories.ProductRepository
	publisher EventPublisher
	logger    zerolog.Logger
}

// NewCategoryService creates a new CategoryService. publisher may be nil.
func NewCategoryService(repo repositories.CategoryRepository, products repositories.ProductRepository, publisher EventPublisher, logger zerolog.Logger) *CategoryService {
	return &CategoryService{
		repo:      repo,
		products:  products,
		publisher: publisher,
		logger:    logger.With().Str("service", "category").Logger(),
	}
}

// ListCategories retrieves all categories.
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a single category.
func (s *CategoryService) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError(err, "failed to get category "+id)
	}
	return category, nil
}

// CreateCategory creates a category with a name not used by any other.
func (s *CategoryService) CreateCategory(ctx context.Context, name, description, image string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrInvalidCategory
	}
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	category := &models.Category{Name: name, Description: description, Image: image}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, s.storeError(err, "failed to create category")
	}
	s.logger.Info().Str("category_id", category.ID).Str("name", name).Msg("category created")
	return category, nil
}

// UpdateCategory applies patch to category id.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, patch CategoryPatch) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError(err, "failed to get category "+id)
	}

	if v := trimmed(patch.Name); v != "" && v != category.Name {
		if err := s.ensureNameFree(ctx, v, id); err != nil {
			return nil, err
		}
		category.Name = v
	}
	if v := trimmed(patch.Description); v != "" {
		category.Description = v
	}
	if v := trimmed(patch.Image); v != "" {
		category.Image = v
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, s.storeError(err, "failed to update category "+id)
	}
	return category, nil
}

// DeleteCategory removes a category no product references.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return s.storeError(err, "failed to get category "+id)
	}

	n, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return s.storeError(err, "failed to count products of category "+id)
	}
	if n > 0 {
		return models.NewCatalogError(models.KindCategoryInUse, "category %s is referenced by %d product(s)", id, n).
			WithDetails(map[string]string{"products": strconv.FormatInt(n, 10)})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeError(err, "failed to delete category "+id)
	}
	s.logger.Info().Str("category_id", id).Msg("category deleted")
	publishEvent(s.publisher, s.logger, CatalogEvent{Type: EventCategoryDeleted, CategoryID: id})
	return nil
}

// ProductsByCategory lists the products referencing category id. The result
// is empty, not nil, when there are none.
func (s *CategoryService) ProductsByCategory(ctx context.Context, id string) ([]models.Product, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, s.storeError(err, "failed to get category "+id)
	}
	products, err := s.products.GetByCategory(ctx, id)
	if err != nil {
		return nil, s.storeError(err, "failed to get products of category "+id)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name, exceptID string) error {
	existing, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil && existing.ID != exceptID:
		return models.NewCatalogError(models.KindCategoryExists, "category %q already exists", name)
	case err == nil, errors.Is(err, models.ErrCategoryNotFound):
		return nil
	default:
		return s.storeError(err, "failed to look up category name")
	}
}

func (s *CategoryService) storeError(err error, msg string) error {
	if _, ok := models.AsCatalogError(err); ok {
		return err
	}
	s.logger.Error().Err(err).Msg(msg)
	return fmt.Errorf("%s: %w", msg, err)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

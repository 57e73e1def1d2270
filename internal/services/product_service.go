package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"katalog/internal/inventory"
	"katalog/internal/models"
	"katalog/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultUpdateRetries bounds how often an update is recomputed after losing
// a version race against another writer.
const DefaultUpdateRetries = 5

// ProductInput carries the caller-editable fields of a product. Stock is
// never part of it: it only changes through CreateProduct's initial quantity
// or a StockAdjustment.
type ProductInput struct {
	Name           string
	CategoryID     string
	ManufacturerID string
	Price          decimal.Decimal
	Description    string
	Images         []string
}

// StockAdjustment is a relative stock change. Negative deltas are treated
// as zero.
type StockAdjustment struct {
	Delta     int
	Operation inventory.Operation
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo          repositories.ProductRepository
	categories    repositories.CategoryRepository
	manufacturers repositories.ManufacturerRepository
	publisher     EventPublisher
	validate      *validator.Validate
	locks         *keyedMutex
	updateRetries int
	logger        zerolog.Logger
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(
	repo repositories.ProductRepository,
	categories repositories.CategoryRepository,
	manufacturers repositories.ManufacturerRepository,
	publisher EventPublisher,
	logger zerolog.Logger,
) *ProductService {
	return &ProductService{
		repo:          repo,
		categories:    categories,
		manufacturers: manufacturers,
		publisher:     publisher,
		validate:      models.NewValidator(),
		locks:         newKeyedMutex(),
		updateRetries: DefaultUpdateRetries,
		logger:        logger.With().Str("service", "product").Logger(),
	}
}

// WithUpdateRetries overrides DefaultUpdateRetries.
func (s *ProductService) WithUpdateRetries(n int) *ProductService {
	if n > 0 {
		s.updateRetries = n
	}
	return s
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get all products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "product", id)
	}
	return product, nil
}

// CreateProduct validates in and quantity, then stores a new product whose
// stock level equals quantity.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput, quantity int) (*models.Product, error) {
	level, err := inventory.Compute(inventory.Request{
		Mode:           inventory.Create,
		Quantity:       quantity,
		ManufacturerID: in.ManufacturerID,
	})
	if err != nil {
		s.logger.Debug().Err(err).Int("quantity", quantity).Msg("rejected product create")
		return nil, err
	}

	product := &models.Product{StockLevel: level}
	in.applyTo(product)
	if err := s.checkProduct(ctx, product); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if _, ok := models.AsCatalogError(err); ok {
			// A reference removed after checkProduct.
			return nil, err
		}
		s.logger.Error().Err(err).Str("name", product.Name).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().Str("product_id", product.ID).Int("stock_level", product.StockLevel).Msg("product created")
	publishEvent(s.publisher, s.logger, CatalogEvent{
		Type:       EventProductCreated,
		ProductID:  product.ID,
		CategoryID: product.CategoryID,
		StockLevel: product.StockLevel,
		Version:    product.Version,
	})
	return product, nil
}

// UpdateProduct replaces the editable fields of product id with in and
// applies adj to the stock level read in the same locked operation.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput, adj StockAdjustment) (*models.Product, error) {
	return s.modify(ctx, id, func(current *models.Product) error {
		level, err := inventory.Compute(inventory.Request{
			Mode:           inventory.Update,
			CurrentStock:   current.StockLevel,
			Delta:          inventory.ClampDelta(adj.Delta),
			Operation:      adj.Operation,
			ManufacturerID: in.ManufacturerID,
		})
		if err != nil {
			return err
		}
		in.applyTo(current)
		current.StockLevel = level
		return s.checkProduct(ctx, current)
	})
}

// AdjustStock applies adj to product id and leaves every other field as stored.
func (s *ProductService) AdjustStock(ctx context.Context, id string, adj StockAdjustment) (*models.Product, error) {
	return s.modify(ctx, id, func(current *models.Product) error {
		level, err := inventory.Compute(inventory.Request{
			Mode:           inventory.Update,
			CurrentStock:   current.StockLevel,
			Delta:          inventory.ClampDelta(adj.Delta),
			Operation:      adj.Operation,
			ManufacturerID: current.ManufacturerID,
		})
		if err != nil {
			return err
		}
		current.StockLevel = level
		return nil
	})
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.lookupError(err, "product", id)
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")
	publishEvent(s.publisher, s.logger, CatalogEvent{Type: EventProductDeleted, ProductID: id})
	return nil
}

// modify runs load, mutate and versioned write for product id while holding
// the product's lock. A version conflict means another replica wrote first:
// the product is reloaded and mutate runs again on the fresh state.
func (s *ProductService) modify(ctx context.Context, id string, mutate func(*models.Product) error) (*models.Product, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	for attempt := 1; ; attempt++ {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, s.lookupError(err, "product", id)
		}

		previous := current.StockLevel
		if err := mutate(current); err != nil {
			s.logger.Debug().Err(err).Str("product_id", id).Int("stock_level", previous).Msg("rejected product update")
			return nil, err
		}

		err = s.repo.Update(ctx, current)
		if err == nil {
			s.logger.Info().
				Str("product_id", id).
				Int("previous_stock_level", previous).
				Int("stock_level", current.StockLevel).
				Int("version", current.Version).
				Msg("product updated")
			publishEvent(s.publisher, s.logger, CatalogEvent{
				Type:       EventProductUpdated,
				ProductID:  current.ID,
				CategoryID: current.CategoryID,
				StockLevel: current.StockLevel,
				Version:    current.Version,
			})
			return current, nil
		}

		if !errors.Is(err, models.ErrVersionConflict) {
			return nil, s.lookupError(err, "product", id)
		}
		if attempt >= s.updateRetries {
			s.logger.Warn().Str("product_id", id).Int("attempts", attempt).Msg("giving up on contended product update")
			return nil, models.ErrConcurrentUpdate
		}
		s.logger.Debug().Str("product_id", id).Int("attempt", attempt).Msg("version conflict, retrying product update")
	}
}

// checkProduct validates fields and verifies the category and manufacturer
// references resolve.
func (s *ProductService) checkProduct(ctx context.Context, product *models.Product) error {
	if err := s.validate.Struct(product); err != nil {
		return models.ErrInvalidProduct.WithDetails(models.ValidationDetails(err))
	}
	if product.CategoryID == "" {
		return models.ErrMissingCategory
	}
	if _, err := s.categories.GetByID(ctx, product.CategoryID); err != nil {
		return s.lookupError(err, "category", product.CategoryID)
	}
	if _, err := s.manufacturers.GetByID(ctx, product.ManufacturerID); err != nil {
		return s.lookupError(err, "manufacturer", product.ManufacturerID)
	}
	return nil
}

// lookupError passes catalog errors through and wraps anything else as a
// persistence failure.
func (s *ProductService) lookupError(err error, entity, id string) error {
	if _, ok := models.AsCatalogError(err); ok {
		return err
	}
	s.logger.Error().Err(err).Str(entity+"_id", id).Msgf("failed to access %s", entity)
	return fmt.Errorf("failed to access %s %s: %w", entity, id, err)
}

func (in ProductInput) applyTo(p *models.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.CategoryID = strings.TrimSpace(in.CategoryID)
	p.ManufacturerID = strings.TrimSpace(in.ManufacturerID)
	p.Price = in.Price.Round(2)
	p.Description = in.Description
	p.Images = append([]string{}, in.Images...)
}

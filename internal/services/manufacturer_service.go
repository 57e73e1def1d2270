package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"katalog/internal/models"
	"katalog/internal/repositories"

	"github.com/rs/zerolog"
)

// ManufacturerService manages the manufacturers products are assigned to.
type ManufacturerService struct {
	repo     repositories.ManufacturerRepository
	products repositories.ProductRepository
	logger   zerolog.Logger
}

// NewManufacturerService creates a new ManufacturerService.
func NewManufacturerService(repo repositories.ManufacturerRepository, products repositories.ProductRepository, logger zerolog.Logger) *ManufacturerService {
	return &ManufacturerService{
		repo:     repo,
		products: products,
		logger:   logger.With().Str("service", "manufacturer").Logger(),
	}
}

// ListManufacturers retrieves all manufacturers.
func (s *ManufacturerService) ListManufacturers(ctx context.Context) ([]models.Manufacturer, error) {
	manufacturers, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list manufacturers")
		return nil, fmt.Errorf("failed to list manufacturers: %w", err)
	}
	return manufacturers, nil
}

// GetManufacturerByID retrieves a single manufacturer.
func (s *ManufacturerService) GetManufacturerByID(ctx context.Context, id string) (*models.Manufacturer, error) {
	manufacturer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError(err, "failed to get manufacturer "+id)
	}
	return manufacturer, nil
}

// CreateManufacturer creates a manufacturer with a name not used by any other.
func (s *ManufacturerService) CreateManufacturer(ctx context.Context, name string) (*models.Manufacturer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrInvalidManufacturer
	}

	_, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil:
		return nil, models.NewCatalogError(models.KindManufacturerExists, "manufacturer %q already exists", name)
	case !errors.Is(err, models.ErrManufacturerNotFound):
		return nil, s.storeError(err, "failed to look up manufacturer name")
	}

	manufacturer := &models.Manufacturer{Name: name}
	if err := s.repo.Create(ctx, manufacturer); err != nil {
		return nil, s.storeError(err, "failed to create manufacturer")
	}
	s.logger.Info().Str("manufacturer_id", manufacturer.ID).Str("name", name).Msg("manufacturer created")
	return manufacturer, nil
}

// DeleteManufacturer removes a manufacturer no product references.
func (s *ManufacturerService) DeleteManufacturer(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return s.storeError(err, "failed to get manufacturer "+id)
	}
	n, err := s.products.CountByManufacturer(ctx, id)
	if err != nil {
		return s.storeError(err, "failed to count products of manufacturer "+id)
	}
	if n > 0 {
		return models.NewCatalogError(models.KindManufacturerInUse, "manufacturer %s is referenced by %d product(s)", id, n)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeError(err, "failed to delete manufacturer "+id)
	}
	return nil
}

func (s *ManufacturerService) storeError(err error, msg string) error {
	if _, ok := models.AsCatalogError(err); ok {
		return err
	}
	s.logger.Error().Err(err).Msg(msg)
	return fmt.Errorf("%s: %w", msg, err)
}

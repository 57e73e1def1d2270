package services_test

import (
	"context"
	"errors"
	"testing"

	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCategoryService(publisher services.EventPublisher) (*services.CategoryService, *repositories.MockProductRepository) {
	products := repositories.NewMockProductRepository()
	return services.NewCategoryService(repositories.NewMockCategoryRepository(), products, publisher, zerolog.Nop()), products
}

func strPtr(s string) *string { return &s }

func TestCategoryService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	service, _ := newCategoryService(nil)

	created, err := service.CreateCategory(ctx, "Vitamins", "Daily supplements", "https://img.example/vit.png")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = service.CreateCategory(ctx, "Analgesics", "", "")
	require.NoError(t, err)

	_, err = service.CreateCategory(ctx, "Vitamins", "again", "")
	assert.True(t, errors.Is(err, models.ErrCategoryExists))

	_, err = service.CreateCategory(ctx, "  ", "", "")
	assert.True(t, errors.Is(err, models.ErrInvalidCategory))

	categories, err := service.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Analgesics", categories[0].Name)

	fetched, err := service.GetCategoryByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Daily supplements", fetched.Description)

	_, err = service.GetCategoryByID(ctx, "missing")
	assert.True(t, errors.Is(err, models.ErrCategoryNotFound))
}

func TestCategoryService_UpdateCategory(t *testing.T) {
	ctx := context.Background()
	service, _ := newCategoryService(nil)

	vitamins, err := service.CreateCategory(ctx, "Vitamins", "Daily supplements", "vit.png")
	require.NoError(t, err)
	_, err = service.CreateCategory(ctx, "Analgesics", "", "")
	require.NoError(t, err)

	// Empty fields keep the stored values.
	updated, err := service.UpdateCategory(ctx, vitamins.ID, services.CategoryPatch{Name: strPtr(""), Image: strPtr("vit-2.png")})
	require.NoError(t, err)
	assert.Equal(t, "Vitamins", updated.Name)
	assert.Equal(t, "Daily supplements", updated.Description)
	assert.Equal(t, "vit-2.png", updated.Image)

	updated, err = service.UpdateCategory(ctx, vitamins.ID, services.CategoryPatch{Name: strPtr("Vitamins & Minerals")})
	require.NoError(t, err)
	assert.Equal(t, "Vitamins & Minerals", updated.Name)

	_, err = service.UpdateCategory(ctx, vitamins.ID, services.CategoryPatch{Name: strPtr("Analgesics")})
	assert.True(t, errors.Is(err, models.ErrCategoryExists))

	_, err = service.UpdateCategory(ctx, "missing", services.CategoryPatch{Name: strPtr("X")})
	assert.True(t, errors.Is(err, models.ErrCategoryNotFound))
}

func TestCategoryService_DeleteBlockedWhileReferenced(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	service, products := newCategoryService(publisher)

	empty, err := service.CreateCategory(ctx, "Seasonal", "", "")
	require.NoError(t, err)
	used, err := service.CreateCategory(ctx, "Analgesics", "", "")
	require.NoError(t, err)
	require.NoError(t, products.Create(ctx, &models.Product{Name: "Aspirin", CategoryID: used.ID, ManufacturerID: "m-1", StockLevel: 3}))

	require.NoError(t, service.DeleteCategory(ctx, empty.ID))

	err = service.DeleteCategory(ctx, used.ID)
	require.True(t, errors.Is(err, models.ErrCategoryInUse))
	ce, _ := models.AsCatalogError(err)
	assert.Equal(t, "1", ce.Details["products"])

	// Still there.
	_, err = service.GetCategoryByID(ctx, used.ID)
	require.NoError(t, err)

	err = service.DeleteCategory(ctx, empty.ID)
	assert.True(t, errors.Is(err, models.ErrCategoryNotFound))

	assert.Equal(t, []string{services.EventCategoryDeleted}, publisher.keys)
}

func TestCategoryService_ProductsByCategory(t *testing.T) {
	ctx := context.Background()
	service, products := newCategoryService(nil)

	analgesics, err := service.CreateCategory(ctx, "Analgesics", "", "")
	require.NoError(t, err)
	vitamins, err := service.CreateCategory(ctx, "Vitamins", "", "")
	require.NoError(t, err)
	require.NoError(t, products.Create(ctx, &models.Product{Name: "Aspirin", CategoryID: analgesics.ID, ManufacturerID: "m-1", StockLevel: 3}))
	require.NoError(t, products.Create(ctx, &models.Product{Name: "Ibuprofen", CategoryID: analgesics.ID, ManufacturerID: "m-1", StockLevel: 9}))

	list, err := service.ProductsByCategory(ctx, analgesics.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = service.ProductsByCategory(ctx, vitamins.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = service.ProductsByCategory(ctx, "missing")
	assert.True(t, errors.Is(err, models.ErrCategoryNotFound))
}

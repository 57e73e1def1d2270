package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"katalog/internal/config"
	"katalog/internal/database"
	"katalog/internal/models"
	"katalog/internal/ocr"
	"katalog/internal/services"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	keys []string
}

func (p *recordingPublisher) Publish(exchange, routingKey string, body []byte) error {
	p.keys = append(p.keys, exchange+"/"+routingKey)
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	v.Set("JWT_SECRET", "test_jwt_secret")
	v.Set("DATABASE_DSN", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return cfg
}

func newTestApp(t *testing.T, publisher services.EventPublisher) *application {
	t.Helper()
	cfg := testConfig(t)
	db, err := database.Open(cfg.Database, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return newApp(cfg, db, zerolog.Nop(), publisher, ocr.Disabled{})
}

func call(t *testing.T, app *application, method, path, token string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.http.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t, nil)

	var health map[string]any
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/health", "", nil, &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "connected", health["database"])
	assert.Equal(t, false, health["rabbitmq"])
}

func TestCatalogFlowPublishesEvents(t *testing.T) {
	publisher := &recordingPublisher{}
	app := newTestApp(t, publisher)

	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "gudang", "email": "gudang@example.com", "password": "rahasia123",
	}, nil))
	var login map[string]string
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "gudang", "password": "rahasia123",
	}, &login))
	token := login["token"]

	var category models.Category
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/v1/categories", token, map[string]string{"name": "Snacks"}, &category))
	var manufacturer models.Manufacturer
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/v1/manufacturers", token, map[string]string{"name": "Indofood"}, &manufacturer))

	var product models.Product
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/v1/products", token, map[string]any{
		"name": "Chitato", "category": category.ID, "manufacturer": manufacturer.ID, "price": "9500", "stock_level": 10,
	}, &product))

	require.Equal(t, http.StatusOK, call(t, app, http.MethodPut, "/api/v1/products/"+product.ID, token, map[string]any{
		"name": "Chitato", "category": category.ID, "manufacturer": manufacturer.ID, "price": "9500",
		"quantity_change": 4, "operation": "Subtract",
	}, &product))
	assert.Equal(t, 6, product.StockLevel)
	assert.Equal(t, 2, product.Version)

	require.Equal(t, http.StatusOK, call(t, app, http.MethodDelete, "/api/v1/products/"+product.ID, token, nil, nil))
	require.Equal(t, http.StatusOK, call(t, app, http.MethodDelete, "/api/v1/categories/"+category.ID, token, nil, nil))

	assert.Equal(t, []string{
		"catalog/product.created",
		"catalog/product.updated",
		"catalog/product.deleted",
		"catalog/category.deleted",
	}, publisher.keys)

	// OCR is disabled in this configuration.
	assert.Equal(t, http.StatusUnauthorized, call(t, app, http.MethodPost, "/api/v1/ocr", "", nil, nil))
}

func TestRootCommandRejectsInvalidConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cmd := newRootCmd(viper.New())
	cmd.SetArgs([]string{"migrate"})
	err := cmd.Execute()
	assert.ErrorContains(t, err, "JWT_SECRET is required")
}

func TestMigrateCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_jwt_secret")
	t.Setenv("DATABASE_DSN", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	cmd := newRootCmd(viper.New())
	cmd.SetArgs([]string{"migrate"})
	assert.NoError(t, cmd.Execute())
}

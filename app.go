package main

import (
	"time"

	"katalog/internal/config"
	"katalog/internal/handlers"
	"katalog/internal/middleware"
	"katalog/internal/ocr"
	"katalog/internal/repositories"
	"katalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// application bundles the HTTP app with the services background workers need.
type application struct {
	http     *fiber.App
	products *services.ProductService
}

// newApp wires repositories, services and handlers into a Fiber app.
// publisher may be nil when RabbitMQ is disabled.
func newApp(cfg *config.Config, db *gorm.DB, log zerolog.Logger, publisher services.EventPublisher, extractor ocr.TextExtractor) *application {
	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	manufacturerRepo := repositories.NewGORMManufacturerRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	// --- Services ---
	productService := services.NewProductService(productRepo, categoryRepo, manufacturerRepo, publisher, log).
		WithUpdateRetries(cfg.Catalog.UpdateRetries)
	categoryService := services.NewCategoryService(categoryRepo, productRepo, publisher, log)
	manufacturerService := services.NewManufacturerService(manufacturerRepo, productRepo, log)
	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, log)

	app := fiber.New(fiber.Config{
		BodyLimit: cfg.OCR.MaxUploadBytes + 1<<20,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New())

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService, log).RegisterRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(authService, log))
	handlers.NewCategoryHandler(categoryService, log).RegisterRoutes(protected)
	handlers.NewManufacturerHandler(manufacturerService, log).RegisterRoutes(protected)
	handlers.NewProductHandler(productService, log).RegisterRoutes(protected)
	handlers.NewOCRHandler(extractor, int64(cfg.OCR.MaxUploadBytes), log).RegisterRoutes(protected)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"rabbitmq": publisher != nil,
			"ocr":      cfg.OCR.Enabled,
		}
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		status["database"] = "connected"
		return c.JSON(status)
	})

	return &application{http: app, products: productService}
}

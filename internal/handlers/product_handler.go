package handlers

import (
	"strings"

	"katalog/internal/inventory"
	"katalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// productRequest is the body of product create and update requests.
// StockLevel is read on create only; QuantityChange and Operation on update only.
type productRequest struct {
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Manufacturer   string          `json:"manufacturer"`
	Price          decimal.Decimal `json:"price"`
	Description    string          `json:"description"`
	Images         []string        `json:"images"`
	StockLevel     int             `json:"stock_level"`
	QuantityChange int             `json:"quantity_change"`
	Operation      string          `json:"operation"`
}

func (r productRequest) input() services.ProductInput {
	return services.ProductInput{
		Name:           r.Name,
		CategoryID:     r.Category,
		ManufacturerID: r.Manufacturer,
		Price:          r.Price,
		Description:    r.Description,
		Images:         r.Images,
	}
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product with stock_level as its initial quantity.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), req.input(), req.StockLevel)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces the product's fields and applies
// quantity_change in the direction given by operation.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	op, err := inventory.ParseOperation(req.Operation)
	// A missing manufacturer is reported ahead of a bad operation.
	if err != nil && strings.TrimSpace(req.Manufacturer) != "" {
		return writeError(c, h.logger, err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), req.input(), services.StockAdjustment{
		Delta:     req.QuantityChange,
		Operation: op,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully", "id": id})
}

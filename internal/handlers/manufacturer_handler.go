package handlers

import (
	"katalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ManufacturerHandler handles HTTP requests for manufacturers.
type ManufacturerHandler struct {
	service *services.ManufacturerService
	logger  zerolog.Logger
}

// NewManufacturerHandler creates a new ManufacturerHandler.
func NewManufacturerHandler(service *services.ManufacturerService, logger zerolog.Logger) *ManufacturerHandler {
	return &ManufacturerHandler{
		service: service,
		logger:  logger.With().Str("handler", "manufacturer").Logger(),
	}
}

// RegisterRoutes registers the manufacturer routes with the Fiber app.
func (h *ManufacturerHandler) RegisterRoutes(router fiber.Router) {
	routes := router.Group("/manufacturers")
	routes.Get("/", h.HandleListManufacturers)
	routes.Post("/", h.HandleCreateManufacturer)
	routes.Get("/:id", h.HandleGetManufacturer)
	routes.Delete("/:id", h.HandleDeleteManufacturer)
}

// HandleListManufacturers retrieves all manufacturers.
func (h *ManufacturerHandler) HandleListManufacturers(c *fiber.Ctx) error {
	manufacturers, err := h.service.ListManufacturers(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(manufacturers)
}

// HandleCreateManufacturer creates a new manufacturer.
func (h *ManufacturerHandler) HandleCreateManufacturer(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	manufacturer, err := h.service.CreateManufacturer(c.UserContext(), req.Name)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(manufacturer)
}

// HandleGetManufacturer retrieves a single manufacturer by its ID.
func (h *ManufacturerHandler) HandleGetManufacturer(c *fiber.Ctx) error {
	manufacturer, err := h.service.GetManufacturerByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(manufacturer)
}

// HandleDeleteManufacturer deletes a manufacturer no product references.
func (h *ManufacturerHandler) HandleDeleteManufacturer(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteManufacturer(c.UserContext(), id); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"message": "Manufacturer deleted successfully", "id": id})
}

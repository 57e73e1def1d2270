package handlers

import (
	"katalog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

var statusByKind = map[models.Kind]int{
	models.KindMissingManufacturer: fiber.StatusBadRequest,
	models.KindInvalidQuantity:     fiber.StatusBadRequest,
	models.KindStockFloorViolation: fiber.StatusBadRequest,
	models.KindInvalidOperation:    fiber.StatusBadRequest,
	models.KindInvalidProduct:      fiber.StatusBadRequest,
	models.KindMissingCategory:     fiber.StatusBadRequest,
	models.KindInvalidCategory:     fiber.StatusBadRequest,
	models.KindInvalidManufacturer: fiber.StatusBadRequest,

	models.KindProductNotFound:      fiber.StatusNotFound,
	models.KindCategoryNotFound:     fiber.StatusNotFound,
	models.KindManufacturerNotFound: fiber.StatusNotFound,

	models.KindCategoryExists:     fiber.StatusConflict,
	models.KindCategoryInUse:      fiber.StatusConflict,
	models.KindManufacturerExists: fiber.StatusConflict,
	models.KindManufacturerInUse:  fiber.StatusConflict,
	models.KindConcurrentUpdate:   fiber.StatusConflict,
	models.KindVersionConflict:    fiber.StatusConflict,

	models.KindExtractionFailed: fiber.StatusBadGateway,
}

// StatusFor maps err to the HTTP status it is reported with.
func StatusFor(err error) int {
	if ce, ok := models.AsCatalogError(err); ok {
		if status, ok := statusByKind[ce.Kind]; ok {
			return status
		}
	}
	return fiber.StatusInternalServerError
}

// writeError renders err as {"kind","message","details"}. Anything that is
// not a catalog error is a persistence failure: it is logged and reported
// without its cause.
func writeError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	status := StatusFor(err)
	ce, ok := models.AsCatalogError(err)
	if !ok || status >= fiber.StatusInternalServerError {
		logger.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Int("status", status).Msg("request failed")
	}
	if !ok {
		return c.Status(status).JSON(fiber.Map{
			"kind":    "InternalError",
			"message": "internal server error",
		})
	}

	body := fiber.Map{
		"kind":    ce.Kind,
		"message": ce.Message,
	}
	if len(ce.Details) > 0 {
		body["details"] = ce.Details
	}
	return c.Status(status).JSON(body)
}

// badRequest reports a malformed request body.
func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"kind":    "InvalidRequest",
		"message": "Invalid request body",
		"details": fiber.Map{"body": err.Error()},
	})
}

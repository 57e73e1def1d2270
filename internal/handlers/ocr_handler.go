package handlers

import (
	"fmt"
	"io"

	"katalog/internal/ocr"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// OCRHandler extracts text from uploaded document images.
type OCRHandler struct {
	extractor ocr.TextExtractor
	maxBytes  int64
	logger    zerolog.Logger
}

// NewOCRHandler creates a new OCRHandler. Uploads larger than maxBytes are rejected.
func NewOCRHandler(extractor ocr.TextExtractor, maxBytes int64, logger zerolog.Logger) *OCRHandler {
	return &OCRHandler{
		extractor: extractor,
		maxBytes:  maxBytes,
		logger:    logger.With().Str("handler", "ocr").Logger(),
	}
}

// RegisterRoutes registers the OCR route with the Fiber app.
func (h *OCRHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/ocr", h.HandleExtractText)
}

// HandleExtractText reads the multipart field "image" and returns {"text"}.
func (h *OCRHandler) HandleExtractText(c *fiber.Ctx) error {
	header, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, fmt.Errorf("multipart field 'image' is required: %w", err))
	}
	if h.maxBytes > 0 && header.Size > h.maxBytes {
		return badRequest(c, fmt.Errorf("image exceeds %d bytes", h.maxBytes))
	}

	f, err := header.Open()
	if err != nil {
		return badRequest(c, err)
	}
	defer f.Close()

	image, err := io.ReadAll(f)
	if err != nil {
		return badRequest(c, err)
	}

	text, err := h.extractor.ExtractText(c.UserContext(), image)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"text": text})
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"katalog/internal/inventory"
	"katalog/internal/models"
	"katalog/internal/services"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

// StockAdjustmentMessage is the body of a message on the stock adjustment queue.
type StockAdjustmentMessage struct {
	ProductID      string `json:"product_id"`
	QuantityChange int    `json:"quantity_change"`
	Operation      string `json:"operation"`
}

// StockAdjustmentConsumer applies queued stock adjustments through the
// product service.
type StockAdjustmentConsumer struct {
	service *services.ProductService
	logger  zerolog.Logger
}

// NewStockAdjustmentConsumer creates a new StockAdjustmentConsumer.
func NewStockAdjustmentConsumer(service *services.ProductService, logger zerolog.Logger) *StockAdjustmentConsumer {
	return &StockAdjustmentConsumer{
		service: service,
		logger:  logger.With().Str("consumer", "stock_adjustments").Logger(),
	}
}

// Handler returns the delivery callback. It returns an error only when the
// adjustment could not be stored, so the broker redelivers it; malformed or
// rejected adjustments are logged and acknowledged. Contended updates are
// redelivered as well. Once ctx is done every delivery returns ctx's error
// without touching the product.
func (h *StockAdjustmentConsumer) Handler(ctx context.Context) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var m StockAdjustmentMessage
		if err := json.Unmarshal(msg.Body, &m); err != nil || m.ProductID == "" {
			h.logger.Warn().Err(err).Uint64("delivery_tag", msg.DeliveryTag).Msg("dropping malformed stock adjustment")
			return nil
		}

		op, err := inventory.ParseOperation(m.Operation)
		if err != nil {
			h.logger.Warn().Err(err).Str("product_id", m.ProductID).Msg("dropping stock adjustment")
			return nil
		}

		product, err := h.service.AdjustStock(ctx, m.ProductID, services.StockAdjustment{
			Delta:     m.QuantityChange,
			Operation: op,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if _, ok := models.AsCatalogError(err); ok && !errors.Is(err, models.ErrConcurrentUpdate) {
				h.logger.Warn().Err(err).Str("product_id", m.ProductID).Msg("stock adjustment rejected")
				return nil
			}
			return err
		}

		h.logger.Info().Str("product_id", product.ID).Int("stock_level", product.StockLevel).Msg("stock adjustment applied")
		return nil
	}
}

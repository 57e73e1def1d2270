package services

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// CatalogExchange is the exchange catalog events are published to.
const CatalogExchange = "catalog"

// Routing keys of catalog events.
const (
	EventProductCreated  = "product.created"
	EventProductUpdated  = "product.updated"
	EventProductDeleted  = "product.deleted"
	EventCategoryDeleted = "category.deleted"
)

// EventPublisher delivers catalog events to a message broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// CatalogEvent is the JSON body of every catalog event.
type CatalogEvent struct {
	Type       string    `json:"type"`
	ProductID  string    `json:"product_id,omitempty"`
	CategoryID string    `json:"category_id,omitempty"`
	StockLevel int       `json:"stock_level,omitempty"`
	Version    int       `json:"version,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publishEvent is best effort: a broker failure never fails the operation
// that produced the event.
func publishEvent(publisher EventPublisher, logger zerolog.Logger, event CatalogEvent) {
	if publisher == nil {
		return
	}
	event.OccurredAt = time.Now().UTC()

	body, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event", event.Type).Msg("failed to marshal catalog event")
		return
	}
	if err := publisher.Publish(CatalogExchange, event.Type, body); err != nil {
		logger.Warn().Err(err).Str("event", event.Type).Msg("failed to publish catalog event")
		return
	}
	logger.Debug().Str("event", event.Type).Msg("published catalog event")
}

package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	amqp "github.com/streadway/amqp"
)

// Names of the broker objects the catalog uses.
const (
	CatalogExchange       = "catalog"
	StockAdjustmentsQueue = "stock_adjustments"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex // serializes publishes on channel
	logger  zerolog.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the catalog
// exchange and the stock adjustment queue.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declare(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger = logger.With().Str("component", "rabbitmq").Logger()
	logger.Info().
		Str("exchange", CatalogExchange).
		Str("queue", StockAdjustmentsQueue).
		Msg("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		logger:  logger,
	}, nil
}

func declare(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		CatalogExchange, // name
		"topic",         // kind
		true,            // durable
		false,           // auto-deleted
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", CatalogExchange, err)
	}

	_, err = ch.QueueDeclare(
		StockAdjustmentsQueue, // name
		true,                  // durable
		false,                 // delete when unused
		false,                 // exclusive
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s queue: %w", StockAdjustmentsQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Publish sends a persistent JSON message to exchange with routingKey.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Debug().Str("exchange", exchange).Str("routing_key", routingKey).Msg("published message")
	return nil
}

// ConsumeStockAdjustments starts a goroutine delivering messages from the
// stock adjustment queue to handler until ctx is done. A nil return
// acknowledges the message; an error requeues it.
func (c *Client) ConsumeStockAdjustments(ctx context.Context, handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		StockAdjustmentsQueue, // queue
		"",                    // consumer tag
		false,                 // auto-ack
		false,                 // exclusive
		false,                 // no-local
		false,                 // no-wait
		nil,                   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info().Str("queue", StockAdjustmentsQueue).Msg("waiting for stock adjustments")
	go process(ctx, msgs, handler, c.logger)
	return nil
}

// process settles deliveries on msgs until the channel closes or ctx is done.
// Once ctx is done, a failed delivery is left unsettled; the broker requeues
// it when the channel closes.
func process(ctx context.Context, msgs <-chan amqp.Delivery, handler func(msg amqp.Delivery) error, logger zerolog.Logger) {
	for {
		var (
			msg amqp.Delivery
			ok  bool
		)
		select {
		case <-ctx.Done():
			logger.Info().Msg("stopping consumer")
			return
		case msg, ok = <-msgs:
			if !ok {
				logger.Info().Msg("delivery channel closed")
				return
			}
		}

		if err := handler(msg); err != nil {
			if ctx.Err() != nil {
				logger.Info().Uint64("delivery_tag", msg.DeliveryTag).Msg("shutting down, leaving message unsettled")
				return
			}
			logger.Error().Err(err).Uint64("delivery_tag", msg.DeliveryTag).Msg("error processing message, requeueing")
			if nackErr := msg.Nack(false, true); nackErr != nil {
				logger.Error().Err(nackErr).Uint64("delivery_tag", msg.DeliveryTag).Msg("error nacking message")
			}
			continue
		}
		if ackErr := msg.Ack(false); ackErr != nil {
			logger.Error().Err(ackErr).Uint64("delivery_tag", msg.DeliveryTag).Msg("error acking message")
		}
	}
}

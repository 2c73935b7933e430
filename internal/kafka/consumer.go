package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/portfolio-tracker/internal/models"
)

// TradeImporter books brokerage fills as portfolio trades
type TradeImporter interface {
	ImportTrade(ctx context.Context, event models.TradeEvent) (*models.Trade, error)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
	Config() kafka.ReaderConfig
}

// Consumer imports TRADE_DETECTED events from the brokerage trade topic.
// Duplicate deliveries are ignored by the importer.
type Consumer struct {
	reader   messageReader
	importer TradeImporter
	logger   zerolog.Logger
}

// NewConsumer creates a new Kafka consumer for trade events
func NewConsumer(brokers []string, topic, groupID string, importer TradeImporter, logger zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader:   reader,
		importer: importer,
		logger:   logger.With().Str("component", "kafka_consumer").Logger(),
	}
}

// Start consumes messages until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().Str("topic", c.reader.Config().Topic).Msg("Starting Kafka consumer")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("Kafka consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				c.logger.Error().Err(err).Msg("Error reading message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.logger.Error().Err(err).
					Int("partition", msg.Partition).
					Int64("offset", msg.Offset).
					Msg("Error processing message")
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	c.logger.Debug().
		Int("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Str("key", string(msg.Key)).
		Msg("Received message")

	var event models.TradeEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal trade event: %w", err)
	}

	// Only process TRADE_DETECTED events
	if event.EventType != models.EventTradeDetected {
		c.logger.Debug().Str("event_type", event.EventType).Msg("Ignoring event type")
		return nil
	}

	trade, err := c.importer.ImportTrade(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to import trade %s from %s: %w", event.Data.OrderID, event.Source, err)
	}
	if trade == nil {
		c.logger.Info().
			Str("order_id", event.Data.OrderID).
			Str("source", event.Source).
			Msg("Trade already imported, skipping")
		return nil
	}

	c.logger.Info().
		Str("user_id", event.UserID).
		Str("symbol", event.Data.Symbol).
		Str("side", trade.Type).
		Str("quantity", trade.Quantity.String()).
		Str("price", trade.Price.String()).
		Str("order_id", event.Data.OrderID).
		Msg("Imported trade")
	return nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}

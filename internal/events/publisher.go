package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bestydev/woolworths-catalog-scraper/internal/frappe"
	"github.com/bestydev/woolworths-catalog-scraper/internal/models"
)

const EventTypeProductSynced = "catalog.product_synced"

// RedisClient interface for Redis operations (for testing)
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// ProductSyncedEvent is the stream payload emitted after each successful
// reconciliation.
type ProductSyncedEvent struct {
	EventID      string   `json:"event_id"`
	Type         string   `json:"type"`
	Timestamp    string   `json:"timestamp"`
	RunID        string   `json:"run_id"`
	ProductID    string   `json:"product_id"`
	SourceSite   string   `json:"source_site"`
	ProductName  string   `json:"product_name"`
	CurrentPrice *float64 `json:"current_price,omitempty"`
	Action       string   `json:"action"`
}

// Publisher pushes sync events onto a Redis stream.
type Publisher struct {
	redis  RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string) *Publisher {
	return &Publisher{
		redis:  client,
		stream: stream,
		logger: slog.Default().With("component", "events"),
	}
}

func (p *Publisher) PublishProductSynced(ctx context.Context, product *models.Product, action frappe.Action, runID string) error {
	event := ProductSyncedEvent{
		EventID:      uuid.New().String(),
		Type:         EventTypeProductSynced,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		RunID:        runID,
		ProductID:    product.ID,
		SourceSite:   product.SourceSite,
		ProductName:  product.Name,
		CurrentPrice: product.CurrentPrice,
		Action:       string(action),
	}

	dataJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":         string(dataJSON),
			"event_id":     event.EventID,
			"type":         event.Type,
			"aggregate_id": event.ProductID,
		},
	}

	if err := p.redis.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", p.stream, err)
	}

	p.logger.Debug("event published",
		"event_id", event.EventID,
		"product_id", event.ProductID,
		"action", event.Action)

	return nil
}

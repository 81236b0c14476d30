package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bestydev/woolworths-catalog-scraper/internal/frappe"
	"github.com/bestydev/woolworths-catalog-scraper/internal/models"
)

// MockRedisClient is a mock for Redis client
type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd {
	mockArgs := m.Called(ctx, args)
	cmd := redis.NewStringCmd(ctx)
	if mockArgs.Get(0) != nil {
		cmd.SetErr(mockArgs.Error(0))
	} else {
		cmd.SetVal("1234567890-0")
	}
	return cmd
}

func (m *MockRedisClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func eventProduct() *models.Product {
	price := 3.45
	p := models.NewProduct("133211", "woolworths.co.nz", time.Now().UTC())
	p.Name = "Fresh Fruit Bananas Yellow"
	p.CurrentPrice = &price
	return p
}

func TestPublishProductSynced(t *testing.T) {
	client := new(MockRedisClient)
	var captured *redis.XAddArgs
	client.On("XAdd", mock.Anything, mock.MatchedBy(func(args *redis.XAddArgs) bool {
		captured = args
		return args.Stream == "stream:catalog_sync"
	})).Return(nil)

	pub := NewPublisher(client, "stream:catalog_sync")
	err := pub.PublishProductSynced(context.Background(), eventProduct(), frappe.ActionUpdated, "run-1")

	require.NoError(t, err)
	client.AssertExpectations(t)

	values := captured.Values.(map[string]interface{})
	assert.Equal(t, EventTypeProductSynced, values["type"])
	assert.Equal(t, "133211", values["aggregate_id"])

	var event ProductSyncedEvent
	require.NoError(t, json.Unmarshal([]byte(values["data"].(string)), &event))
	assert.Equal(t, "run-1", event.RunID)
	assert.Equal(t, "updated", event.Action)
	assert.Equal(t, "Fresh Fruit Bananas Yellow", event.ProductName)
	require.NotNil(t, event.CurrentPrice)
	assert.Equal(t, 3.45, *event.CurrentPrice)
	assert.NotEmpty(t, event.EventID)
}

func TestPublishProductSynced_RedisError(t *testing.T) {
	client := new(MockRedisClient)
	client.On("XAdd", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	pub := NewPublisher(client, "stream:catalog_sync")
	err := pub.PublishProductSynced(context.Background(), eventProduct(), frappe.ActionCreated, "run-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream:catalog_sync")
}

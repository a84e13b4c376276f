package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultMarkTTL = 24 * time.Hour

// DeliveryMarker implements ports.DeliveryMarker with SET NX.
// Key format: delivered:<key>
type DeliveryMarker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDeliveryMarker creates a marker whose keys expire after ttl
// (defaultMarkTTL when ttl <= 0).
func NewDeliveryMarker(client *redis.Client, ttl time.Duration) *DeliveryMarker {
	if ttl <= 0 {
		ttl = defaultMarkTTL
	}
	return &DeliveryMarker{client: client, ttl: ttl}
}

// MarkOnce reports true only for the first caller to mark key within ttl.
func (d *DeliveryMarker) MarkOnce(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, "delivered:"+key, "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("delivery mark: %w", err)
	}
	return ok, nil
}

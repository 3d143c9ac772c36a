package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sales-service/internal/util"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// DefaultProductTTL bounds how stale a cached product read may be.
const DefaultProductTTL = 5 * time.Minute

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a new Redis client and verifies connectivity.
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, ttl: DefaultProductTTL}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func productKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id)
}

// GetProduct loads a cached product payload into dest. It returns false on a
// cache miss; cache faults count as misses so reads fall through to Postgres.
func (c *Client) GetProduct(ctx context.Context, id uuid.UUID, dest interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if err == redis.Nil {
		util.ProductCacheMisses.Inc()
		return false, nil
	}
	if err != nil {
		util.ProductCacheMisses.Inc()
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		util.ProductCacheMisses.Inc()
		return false, fmt.Errorf("failed to decode cached product: %w", err)
	}

	util.ProductCacheHits.Inc()
	return true, nil
}

// SetProduct caches a product payload with the client TTL.
func (c *Client) SetProduct(ctx context.Context, id uuid.UUID, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode product for cache: %w", err)
	}
	return c.rdb.Set(ctx, productKey(id), raw, c.ttl).Err()
}

// InvalidateProduct drops a cached product after a write.
func (c *Client) InvalidateProduct(ctx context.Context, id uuid.UUID) error {
	return c.rdb.Del(ctx, productKey(id)).Err()
}

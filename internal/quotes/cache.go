package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trogers1052/portfolio-tracker/internal/models"
)

// Cache keeps last-known quotes in Redis. A nil Redis client disables it.
type Cache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCache creates a Redis quote cache. ttl 0 keeps entries forever.
func NewCache(rdb *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, prefix: prefix, ttl: ttl}
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return rdb, nil
}

// Enabled reports whether the cache is backed by Redis
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Key returns the Redis key for a ticker
func (c *Cache) Key(ticker string) string {
	return fmt.Sprintf("%s:quote:%s", c.prefix, ticker)
}

// Get returns the cached quote for ticker. A miss is not an error.
func (c *Cache) Get(ctx context.Context, ticker string) (*models.Quote, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}

	data, err := c.rdb.Get(ctx, c.Key(ticker)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached quote: %w", err)
	}

	var q models.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, false, fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return &q, true, nil
}

// Set stores a quote
func (c *Cache) Set(ctx context.Context, q *models.Quote) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	if err := c.rdb.Set(ctx, c.Key(q.Ticker), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache quote: %w", err)
	}
	return nil
}

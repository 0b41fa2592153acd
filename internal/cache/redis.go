package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefix for cached reports
const reportKeyPrefix = "report:"

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(addr, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisCache{
		client: client,
	}, nil
}

// GetReport retrieves a cached report body by run id
func (c *RedisCache) GetReport(ctx context.Context, runID string) ([]byte, error) {
	data, err := c.client.Get(ctx, reportKeyPrefix+runID).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SetReport stores a report body with TTL
func (c *RedisCache) SetReport(ctx context.Context, runID string, body []byte, ttl time.Duration) error {
	return c.client.Set(ctx, reportKeyPrefix+runID, body, ttl).Err()
}

// InvalidateRun removes the cached report for a run
func (c *RedisCache) InvalidateRun(ctx context.Context, runID string) error {
	return c.client.Del(ctx, reportKeyPrefix+runID).Err()
}

// Close closes the cache connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

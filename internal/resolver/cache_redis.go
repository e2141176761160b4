package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zach-wendland/stonkzap/internal/domain"
)

const redisKeyPrefix = "stonkzap:resolver:"

// RedisCache provides a Redis-backed resolver cache for multi-instance
// deployments. Redis key TTL enforces the freshness window, so expired
// entries are simply absent.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, query string) (*domain.Instrument, bool, error) {
	data, err := c.rdb.Get(ctx, redisKeyPrefix+query).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("resolver cache get: %w", err)
	}

	var inst domain.Instrument
	if err := json.Unmarshal(data, &inst); err != nil {
		// Corrupt entry: treat as a miss so the lookup refreshes it.
		return nil, false, nil
	}
	return &inst, true, nil
}

func (c *RedisCache) Put(ctx context.Context, query string, inst domain.Instrument) error {
	data, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("resolver cache marshal: %w", err)
	}
	if err := c.rdb.Set(ctx, redisKeyPrefix+query, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("resolver cache put: %w", err)
	}
	return nil
}

package cache

import (
	"context"
	"fmt"
	"time"

	redis "github.com/go-redis/redis/v8"
)

type redisCache struct {
	r *redis.Client
}

// NewRedis wraps an existing Redis client as a Cache. The client is
// shared across requests; expiry is delegated to Redis TTLs.
func NewRedis(client *redis.Client) Cache {
	return &redisCache{r: client}
}

// NewRedisAddr dials a Redis instance at addr and returns it as a
// Cache.
func NewRedisAddr(addr string) Cache {
	return NewRedis(redis.NewClient(&redis.Options{Addr: addr}))
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := c.r.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := c.r.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

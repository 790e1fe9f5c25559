package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/config"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/utils"
	"github.com/redis/go-redis/v9"
)

type redisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

func NewRedisCache(client *redis.Client, cfg *config.CacheConfig) Cache {
	return &redisCache{client: client, defaultTTL: cfg.DefaultTTL}
}

func (r *redisCache) Get(ctx context.Context, key string, value any) (bool, error) {
	ctx, cancel := utils.WithRedisTimeout(ctx)
	defer cancel()

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("cache: get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, value); err != nil {
		return false, fmt.Errorf("cache: decode %s: %w", key, err)
	}

	return true, nil
}

// Set stores value under key. A non-positive ttl falls back to the configured default.
func (r *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}

	if ttl <= 0 {
		ttl = r.defaultTTL
	}

	ctx, cancel := utils.WithRedisTimeout(ctx)
	defer cancel()

	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}

	return nil
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	ctx, cancel := utils.WithRedisTimeout(ctx)
	defer cancel()

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache: delete %s: %w", key, err)
	}

	return nil
}

// Close leaves the shared client open; its owner closes it.
func (r *redisCache) Close() error {
	return nil
}

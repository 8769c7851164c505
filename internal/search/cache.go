package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/octobees/icp-finder/internal/entity"
)

const cacheKeyPrefix = "icpfinder:search:"

// Cache stores ladder results keyed by query and limit.
type Cache interface {
	Get(ctx context.Context, key string) ([]entity.SearchResult, bool, error)
	Set(ctx context.Context, key string, results []entity.SearchResult, ttl time.Duration) error
}

// RedisCache is a Cache backed by Redis strings holding JSON.
type RedisCache struct {
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]entity.SearchResult, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var results []entity.SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, false, fmt.Errorf("decode cached results: %w", err)
	}
	return results, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, results []entity.SearchResult, ttl time.Duration) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func cacheKey(query string, limit int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s", limit, query)))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/return-router/backend-go/internal/config"
	"github.com/andresuchdata/return-router/backend-go/internal/domain"
	"github.com/andresuchdata/return-router/backend-go/internal/routing"
	"github.com/redis/go-redis/v9"
)

const recommendationKeyPrefix = "recommendations:result"

// RecommendationCache memoizes scoring results by input fingerprint.
type RecommendationCache interface {
	Get(ctx context.Context, key string) (*routing.Result, bool, error)
	Set(ctx context.Context, key string, result *routing.Result) error
	InvalidateAll(ctx context.Context) error
	Close() error
}

type redisRecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopRecommendationCache struct{}

// NewRecommendationCache returns a redis-backed cache, or a no-op one when
// caching is disabled.
func NewRecommendationCache(ctx context.Context, cfg config.CacheConfig) (RecommendationCache, error) {
	if !cfg.Enabled {
		return &noopRecommendationCache{}, nil
	}

	client, ttl, err := newRedisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &redisRecommendationCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopRecommendationCache() RecommendationCache {
	return &noopRecommendationCache{}
}

func (c *redisRecommendationCache) Get(ctx context.Context, key string) (*routing.Result, bool, error) {
	payload, err := c.client.Get(ctx, recommendationKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result routing.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("decode recommendation cache: %w", err)
	}
	return &result, true, nil
}

func (c *redisRecommendationCache) Set(ctx context.Context, key string, result *routing.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode recommendation cache: %w", err)
	}

	if err := c.client.Set(ctx, recommendationKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisRecommendationCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, recommendationKeyPrefix, scanBatchSize)
}

func (c *redisRecommendationCache) Close() error {
	return c.client.Close()
}

func (n *noopRecommendationCache) Get(ctx context.Context, key string) (*routing.Result, bool, error) {
	return nil, false, nil
}

func (n *noopRecommendationCache) Set(ctx context.Context, key string, result *routing.Result) error {
	return nil
}

func (n *noopRecommendationCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func (n *noopRecommendationCache) Close() error {
	return nil
}

func recommendationKey(fingerprint string) string {
	return fmt.Sprintf("%s:%s", recommendationKeyPrefix, fingerprint)
}

// Fingerprint hashes the input tables and the normalized weights.
func Fingerprint(tables domain.Tables, weights domain.Weights) (string, error) {
	h := sha1.New()
	enc := json.NewEncoder(h)
	if err := enc.Encode(weights.Normalize()); err != nil {
		return "", fmt.Errorf("hash weights: %w", err)
	}
	if err := enc.Encode(tables); err != nil {
		return "", fmt.Errorf("hash tables: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

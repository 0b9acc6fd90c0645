package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/slushhq/agent-ops/internal/core"
	"github.com/slushhq/agent-ops/internal/domain/model"
)

const latestOutputKeyPrefix = "agentops:latest_output:"

// RedisOutputCache caches the latest output per job type in Redis. The cache
// is advisory: the database stays the source of truth, and every failure
// here must be treated by callers as a miss.
type RedisOutputCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// RedisOutputCacheOptions groups dependencies for NewRedisOutputCache.
type RedisOutputCacheOptions struct {
	Client redis.UniversalClient // Required
	TTL    time.Duration         // Required: entry lifetime
	Logger *slog.Logger          // Optional
}

// NewRedisOutputCache creates a RedisOutputCache.
func NewRedisOutputCache(opts RedisOutputCacheOptions) *RedisOutputCache {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisOutputCache{
		client: opts.Client,
		ttl:    opts.TTL,
		logger: logger.With("component", "output_cache"),
	}
}

var _ core.OutputCache = (*RedisOutputCache)(nil)

func latestOutputKey(jobType model.JobType) string {
	return latestOutputKeyPrefix + string(jobType)
}

// GetLatest returns the cached latest output for a type, or (nil, nil) on a
// miss.
func (c *RedisOutputCache) GetLatest(ctx context.Context, jobType model.JobType) (*model.Output, error) {
	raw, err := c.client.Get(ctx, latestOutputKey(jobType)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var out model.Output
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		// A corrupt entry is dropped and treated as a miss.
		c.logger.WarnContext(ctx, "dropping undecodable cache entry", "type", string(jobType), "err", err)
		_ = c.client.Del(ctx, latestOutputKey(jobType)).Err()
		return nil, nil
	}
	return &out, nil
}

// SetLatest stores the output as the latest of its type.
func (c *RedisOutputCache) SetLatest(ctx context.Context, output *model.Output) error {
	if output == nil {
		return errors.New("output is required")
	}
	payload, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, latestOutputKey(output.Type), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate removes the cached entry for a type.
func (c *RedisOutputCache) Invalidate(ctx context.Context, jobType model.JobType) error {
	if err := c.client.Del(ctx, latestOutputKey(jobType)).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}

// Health checks the Redis connection.
func (c *RedisOutputCache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/logger"
)

// DefaultRedisPrefix namespaces directory entries in a shared redis.
const DefaultRedisPrefix = "tenantdir:"

type redisCache struct {
	client redis.UniversalClient
	prefix string
	log    *slog.Logger
}

// NewRedisCache creates a cache shared by every worker through redis.
// Redis failures degrade to cache misses and are logged, never returned:
// the directory falls through to its provider.
func NewRedisCache(client redis.UniversalClient, prefix string, log *slog.Logger) Cache {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if log == nil {
		log = logger.Discard()
	}
	return &redisCache{client: client, prefix: prefix, log: log}
}

func (c *redisCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WarnContext(ctx, "tenant cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		return nil, false
	}

	var t Tenant
	if err := json.Unmarshal(data, &t); err != nil {
		c.log.WarnContext(ctx, "tenant cache entry corrupt", slog.String("key", key), slog.Any("error", err))
		_ = c.client.Del(ctx, c.prefix+key).Err()
		return nil, false
	}
	return &t, true
}

func (c *redisCache) Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration) {
	data, err := json.Marshal(tenant)
	if err != nil {
		c.log.WarnContext(ctx, "tenant cache encode failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "tenant cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = c.prefix + key
	}
	// Invalidation must not be lost silently: other workers would keep
	// serving the stale record until the TTL expires.
	if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
		c.log.ErrorContext(ctx, "tenant cache invalidation failed", slog.Any("keys", keys), slog.Any("error", err))
	}
}

// Close is a no-op: the redis client is owned by the caller.
func (c *redisCache) Close() error { return nil }

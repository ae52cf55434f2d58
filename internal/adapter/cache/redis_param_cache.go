package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/usecase"
)

// RedisParamCache decorates a SystemParams source with a short-lived Redis
// cache, so hot-path parameter reads (every prepare and every cache lookup)
// do not hammer the parameter table. Misses and Redis failures both fall
// through to the source.
type RedisParamCache struct {
	rdb    *redis.Client
	source usecase.SystemParams
	ttl    time.Duration
}

func NewRedisParamCache(rdb *redis.Client, source usecase.SystemParams, ttl time.Duration) *RedisParamCache {
	return &RedisParamCache{rdb: rdb, source: source, ttl: ttl}
}

func paramKey(key string) string { return "sysparam:" + key }

func (c *RedisParamCache) GetString(ctx context.Context, key, def string) string {
	if v, err := c.rdb.Get(ctx, paramKey(key)).Result(); err == nil {
		return v
	}
	v := c.source.GetString(ctx, key, def)
	_ = c.rdb.Set(ctx, paramKey(key), v, c.ttl).Err()
	return v
}

func (c *RedisParamCache) GetInt(ctx context.Context, key string, def int) int {
	if n, err := c.rdb.Get(ctx, paramKey(key)).Int(); err == nil {
		return n
	}
	v := c.source.GetInt(ctx, key, def)
	_ = c.rdb.Set(ctx, paramKey(key), v, c.ttl).Err()
	return v
}

func (c *RedisParamCache) GetBool(ctx context.Context, key string, def bool) bool {
	if b, err := c.rdb.Get(ctx, paramKey(key)).Bool(); err == nil {
		return b
	}
	v := c.source.GetBool(ctx, key, def)
	_ = c.rdb.Set(ctx, paramKey(key), v, c.ttl).Err()
	return v
}

var _ usecase.SystemParams = (*RedisParamCache)(nil)

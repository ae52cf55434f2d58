package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/usecase"
)

// RedisCheckoutCache keeps a JSON snapshot of each live checkout keyed by id.
// Entries carry the checkout's remaining TTL, so the cache can never outlive
// the payment window.
type RedisCheckoutCache struct {
	rdb *redis.Client
}

func NewRedisCheckoutCache(rdb *redis.Client) *RedisCheckoutCache {
	return &RedisCheckoutCache{rdb: rdb}
}

func checkoutKey(id string) string { return "checkout:" + id }

func (c *RedisCheckoutCache) Put(ctx context.Context, chk *domain.Checkout, ttl time.Duration) error {
	raw, err := json.Marshal(chk)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, checkoutKey(chk.ID), raw, ttl).Err()
}

func (c *RedisCheckoutCache) Get(ctx context.Context, id string) (*domain.Checkout, error) {
	raw, err := c.rdb.Get(ctx, checkoutKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var chk domain.Checkout
	if err := json.Unmarshal(raw, &chk); err != nil {
		return nil, err
	}
	return &chk, nil
}

func (c *RedisCheckoutCache) Drop(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, checkoutKey(id)).Err()
}

var _ usecase.CheckoutCache = (*RedisCheckoutCache)(nil)

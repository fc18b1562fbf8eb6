package tenant

import (
	"context"
	"errors"
	"time"
)

type tieredCache struct {
	l1, l2 Cache
	l1TTL  time.Duration
}

// NewTieredCache layers a process-local cache (l1) over a shared one (l2).
// L2 hits refill L1 with at most l1TTL so local copies age out quickly
// after another worker invalidates the shared entry.
func NewTieredCache(l1, l2 Cache, l1TTL time.Duration) Cache {
	if l1TTL <= 0 {
		l1TTL = 30 * time.Second
	}
	return &tieredCache{l1: l1, l2: l2, l1TTL: l1TTL}
}

func (c *tieredCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	if t, ok := c.l1.Get(ctx, key); ok {
		return t, true
	}
	t, ok := c.l2.Get(ctx, key)
	if ok {
		c.l1.Set(ctx, key, t, c.l1TTL)
	}
	return t, ok
}

func (c *tieredCache) Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration) {
	c.l2.Set(ctx, key, tenant, ttl)
	c.l1.Set(ctx, key, tenant, min(ttl, c.l1TTL))
}

func (c *tieredCache) Delete(ctx context.Context, keys ...string) {
	c.l2.Delete(ctx, keys...)
	c.l1.Delete(ctx, keys...)
}

func (c *tieredCache) Close() error {
	return errors.Join(c.l1.Close(), c.l2.Close())
}

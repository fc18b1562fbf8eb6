package tenant

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

type ristrettoCache struct {
	c *ristretto.Cache[string, *Tenant]
}

// NewRistrettoCache creates an in-process cache bounded to roughly maxItems tenants.
// It is meant as the L1 in front of a shared cache, see NewTieredCache.
func NewRistrettoCache(maxItems int64) (Cache, error) {
	if maxItems <= 0 {
		maxItems = DefaultCacheSize
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, *Tenant]{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
		// Cost counts tenants; ristretto's own per-item overhead must not
		// eat into the budget.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &ristrettoCache{c: c}, nil
}

func (r *ristrettoCache) Get(_ context.Context, key string) (*Tenant, bool) {
	return r.c.Get(key)
}

func (r *ristrettoCache) Set(_ context.Context, key string, tenant *Tenant, ttl time.Duration) {
	r.c.SetWithTTL(key, tenant, 1, ttl)
	// Sets are buffered; wait so an immediate Get after Set observes the value.
	r.c.Wait()
}

func (r *ristrettoCache) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		r.c.Del(key)
	}
}

func (r *ristrettoCache) Close() error {
	r.c.Close()
	return nil
}

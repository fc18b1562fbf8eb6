package tenant

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Cache memoizes directory lookups. Implementations may be process-local
// or shared between workers; the directory never relies on a cached value
// for the activity check made at switch time.
type Cache interface {
	// Get retrieves a tenant from cache by key.
	Get(ctx context.Context, key string) (*Tenant, bool)

	// Set stores a tenant in cache with the given TTL.
	Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration)

	// Delete removes the given keys from cache.
	Delete(ctx context.Context, keys ...string)

	// Close releases any resources held by the cache.
	Close() error
}

// DefaultCacheSize is the default maximum number of items in the in-memory cache.
const DefaultCacheSize = 1000

type inMemoryCache struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List // front is most recently used
	maxSize int
	now     func() time.Time
	stop    chan struct{}
	done    chan struct{}
	closed  bool
}

type cacheItem struct {
	key       string
	tenant    *Tenant
	expiresAt time.Time
}

// NewInMemoryCache creates an LRU cache with TTL expiry and a janitor goroutine.
func NewInMemoryCache(maxSize int) Cache {
	return newInMemoryCache(maxSize, time.Now, time.Minute)
}

func newInMemoryCache(maxSize int, now func() time.Time, janitorEvery time.Duration) *inMemoryCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	c := &inMemoryCache{
		items:   make(map[string]*list.Element, maxSize),
		order:   list.New(),
		maxSize: maxSize,
		now:     now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.janitor(janitorEvery)
	return c
}

func (c *inMemoryCache) Get(_ context.Context, key string) (*Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	item := el.Value.(*cacheItem)
	if c.now().After(item.expiresAt) {
		c.removeElement(el)
		return nil, false
	}
	c.order.MoveToFront(el)
	return item.tenant, true
}

func (c *inMemoryCache) Set(_ context.Context, key string, tenant *Tenant, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)
	if el, ok := c.items[key]; ok {
		item := el.Value.(*cacheItem)
		item.tenant = tenant
		item.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
	c.items[key] = c.order.PushFront(&cacheItem{key: key, tenant: tenant, expiresAt: expiresAt})
}

func (c *inMemoryCache) Delete(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		if el, ok := c.items[key]; ok {
			c.removeElement(el)
		}
	}
}

func (c *inMemoryCache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*cacheItem).key)
}

func (c *inMemoryCache) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *inMemoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*cacheItem).expiresAt) {
			c.removeElement(el)
		}
		el = prev
	}
}

// Close stops the janitor goroutine and waits for it to finish.
func (c *inMemoryCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	return nil
}

type noOpCache struct{}

// NewNoOpCache creates a cache that never stores anything.
func NewNoOpCache() Cache { return noOpCache{} }

func (noOpCache) Get(context.Context, string) (*Tenant, bool)         { return nil, false }
func (noOpCache) Set(context.Context, string, *Tenant, time.Duration) {}
func (noOpCache) Delete(context.Context, ...string)                   {}
func (noOpCache) Close() error                                        { return nil }

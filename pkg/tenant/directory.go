package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/logger"
)

// DefaultCacheTTL bounds how long a memoized lookup may be served.
const DefaultCacheTTL = 15 * time.Minute

// Directory resolves tenant identifiers to tenant records through a Provider,
// memoizing successful lookups in a Cache.
type Directory struct {
	provider Provider
	cache    Cache
	ttl      time.Duration
	log      *slog.Logger
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithCache sets the cache used for lookups. Defaults to an in-memory LRU.
func WithCache(cache Cache) DirectoryOption {
	return func(d *Directory) {
		if cache != nil {
			d.cache = cache
		}
	}
}

// WithCacheTTL sets the lifetime of cached lookups.
func WithCacheTTL(ttl time.Duration) DirectoryOption {
	return func(d *Directory) {
		if ttl > 0 {
			d.ttl = ttl
		}
	}
}

func WithLogger(log *slog.Logger) DirectoryOption {
	return func(d *Directory) {
		if log != nil {
			d.log = log
		}
	}
}

// NewDirectory creates a tenant directory backed by provider.
func NewDirectory(provider Provider, opts ...DirectoryOption) *Directory {
	if provider == nil {
		panic("tenant: provider cannot be nil")
	}
	d := &Directory{
		provider: provider,
		ttl:      DefaultCacheTTL,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.cache == nil {
		d.cache = NewInMemoryCache(DefaultCacheSize)
	}
	return d
}

// Resolve returns the tenant named by identifier, a UUID or a domain.
// Results are cached under the normalized literal identifier. Inactive
// tenants are returned; callers that require activity must check Active.
func (d *Directory) Resolve(ctx context.Context, identifier string) (*Tenant, error) {
	id, err := ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	if t, ok := d.cache.Get(ctx, id.Key()); ok {
		return t, nil
	}
	return d.load(ctx, id)
}

// ResolveFresh bypasses the cache, reads the backing store and refreshes the
// cached entry. Authorization-critical activity checks go through here so a
// deactivation is never hidden by a stale cached record.
func (d *Directory) ResolveFresh(ctx context.Context, identifier string) (*Tenant, error) {
	id, err := ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	return d.load(ctx, id)
}

func (d *Directory) load(ctx context.Context, id Identifier) (*Tenant, error) {
	var (
		t   *Tenant
		err error
	)
	if id.IsID() {
		t, err = d.provider.GetByID(ctx, id.ID)
	} else {
		t, err = d.provider.GetByDomain(ctx, id.Domain)
	}
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			// A stale positive entry must not outlive the record.
			d.cache.Delete(ctx, id.Key())
			return nil, err
		}
		return nil, fmt.Errorf("tenant directory lookup %q: %w", id.Key(), err)
	}

	d.cache.Set(ctx, id.Key(), t, d.ttl)
	return t, nil
}

// Invalidate drops every cache entry of the given records: the id key and the
// domain key of each. Pass both the old and the new record when a domain changes.
func (d *Directory) Invalidate(ctx context.Context, tenants ...*Tenant) {
	keys := make([]string, 0, len(tenants)*2)
	for _, t := range tenants {
		if t == nil {
			continue
		}
		keys = append(keys, t.ID.String())
		if domain := NormalizeDomain(t.Domain); domain != "" {
			keys = append(keys, domain)
		}
	}
	if len(keys) == 0 {
		return
	}
	d.cache.Delete(ctx, keys...)
	d.log.DebugContext(ctx, "tenant cache invalidated", slog.Any("keys", keys))
}

// Close releases the cache.
func (d *Directory) Close() error {
	return d.cache.Close()
}

// Package tenant is the tenant directory of the platform: the tenant record,
// its backing store and a cached resolver from identifiers to records.
//
// # Identifiers
//
// A tenant is addressed either by its UUID or by its domain. ParseIdentifier
// decides between the two syntactically; a value shaped like a UUID is never
// looked up as a domain, so a lookup is never ambiguous. Domains are case-folded
// before use so cache keys and comparisons are stable.
//
// # Directory
//
//	store := tenant.NewStore(centralPool)
//	dir := tenant.NewDirectory(store,
//		tenant.WithCache(tenant.NewTieredCache(l1, tenant.NewRedisCache(rdb, "", log), 30*time.Second)),
//		tenant.WithCacheTTL(15*time.Minute),
//	)
//
//	t, err := dir.Resolve(ctx, "acme.example")
//	if errors.Is(err, tenant.ErrTenantNotFound) {
//		// 404
//	}
//
// Resolve memoizes successful lookups under the literal identifier used.
// ResolveFresh skips the cache and refreshes it; it is what authorization
// paths use so a deactivation takes effect immediately.
//
// Whenever a record changes, call Invalidate with the record (and its previous
// version when the domain changed). Both the id key and the domain key are
// dropped together.
//
// # Caches
//
// NewInMemoryCache is a bounded LRU with TTL for a single process.
// NewRistrettoCache is a concurrent admission-controlled L1. NewRedisCache
// shares entries between workers. NewTieredCache combines an L1 and a shared L2.
package tenant

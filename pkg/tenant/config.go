package tenant

import "time"

// Config holds the directory cache settings.
type Config struct {
	CacheTTL    time.Duration `env:"TENANT_CACHE_TTL" envDefault:"15m"`                 // CacheTTL bounds staleness of shared lookups.
	L1Size      int64         `env:"TENANT_CACHE_L1_SIZE" envDefault:"1000"`            // L1Size is the in-process cache capacity in tenants.
	L1TTL       time.Duration `env:"TENANT_CACHE_L1_TTL" envDefault:"30s"`              // L1TTL bounds staleness of the in-process copy.
	RedisPrefix string        `env:"TENANT_CACHE_REDIS_PREFIX" envDefault:"tenantdir:"` // RedisPrefix namespaces the shared cache keys.
}

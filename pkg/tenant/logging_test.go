package tenant_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenant"
)

// Not parallel: it swaps the process-wide default logger.
func TestDefaultLoggerIsSilent(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := context.Background()

	t.Run("directory without a logger writes nothing", func(t *testing.T) {
		dir := tenant.NewDirectory(new(mockProvider), tenant.WithCache(tenant.NewNoOpCache()))
		dir.Invalidate(ctx, createTestTenant("acme.example", true))
		assert.Empty(t, buf.String())
	})

	t.Run("redis cache without a logger writes nothing", func(t *testing.T) {
		client := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
			MaxRetries:  -1,
		})
		t.Cleanup(func() { _ = client.Close() })

		cache := tenant.NewRedisCache(client, "", nil)
		_, ok := cache.Get(ctx, "acme.example")
		assert.False(t, ok)
		assert.Empty(t, buf.String())
	})
}

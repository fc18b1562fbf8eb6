package tenant_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenant"
)

func TestContext(t *testing.T) {
	t.Parallel()

	t.Run("round trips the routed tenant", func(t *testing.T) {
		t.Parallel()

		acme := createTestTenant("acme.example", true)
		ctx := tenant.WithTenant(context.Background(), acme)

		got, ok := tenant.FromContext(ctx)
		assert.True(t, ok)
		assert.Same(t, acme, got)

		id, ok := tenant.IDFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, acme.ID, id)

		attr, ok := tenant.LoggerExtractor()(ctx)
		assert.True(t, ok)
		assert.Equal(t, acme.ID.String(), attr.Value.String())
	})

	t.Run("empty context has no tenant", func(t *testing.T) {
		t.Parallel()

		_, ok := tenant.FromContext(context.Background())
		assert.False(t, ok)
		_, ok = tenant.IDFromContext(context.Background())
		assert.False(t, ok)
		_, ok = tenant.LoggerExtractor()(context.Background())
		assert.False(t, ok)
	})

	t.Run("nil tenant is treated as absent", func(t *testing.T) {
		t.Parallel()

		_, ok := tenant.FromContext(tenant.WithTenant(context.Background(), nil))
		assert.False(t, ok)
	})
}

package tenant_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenant"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*tenant.Tenant)
	return t, args.Error(1)
}

func (m *mockProvider) GetByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	args := m.Called(ctx, domain)
	t, _ := args.Get(0).(*tenant.Tenant)
	return t, args.Error(1)
}

func createTestTenant(domain string, active bool) *tenant.Tenant {
	return &tenant.Tenant{
		ID:        uuid.New(),
		Domain:    domain,
		Name:      "Test " + domain,
		Active:    active,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func newDirectory(t *testing.T, provider tenant.Provider) *tenant.Directory {
	t.Helper()
	dir := tenant.NewDirectory(provider, tenant.WithCache(tenant.NewInMemoryCache(10)))
	t.Cleanup(func() { _ = dir.Close() })
	return dir
}

func TestDirectory_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("uuid identifiers query by id only", func(t *testing.T) {
		t.Parallel()

		acme := createTestTenant("acme.example", true)
		provider := new(mockProvider)
		provider.On("GetByID", mock.Anything, acme.ID).Return(acme, nil).Once()

		got, err := newDirectory(t, provider).Resolve(context.Background(), acme.ID.String())
		require.NoError(t, err)
		assert.Equal(t, acme, got)
		provider.AssertNotCalled(t, "GetByDomain", mock.Anything, mock.Anything)
		provider.AssertExpectations(t)
	})

	t.Run("domain identifiers query by domain only", func(t *testing.T) {
		t.Parallel()

		acme := createTestTenant("acme.example", true)
		provider := new(mockProvider)
		provider.On("GetByDomain", mock.Anything, "acme.example").Return(acme, nil).Once()

		got, err := newDirectory(t, provider).Resolve(context.Background(), "ACME.example")
		require.NoError(t, err)
		assert.Equal(t, acme.ID, got.ID)
		provider.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("successful lookups are cached", func(t *testing.T) {
		t.Parallel()

		acme := createTestTenant("acme.example", true)
		provider := new(mockProvider)
		provider.On("GetByID", mock.Anything, acme.ID).Return(acme, nil).Once()
		dir := newDirectory(t, provider)

		for range 3 {
			got, err := dir.Resolve(context.Background(), acme.ID.String())
			require.NoError(t, err)
			assert.Equal(t, acme.ID, got.ID)
		}
		provider.AssertNumberOfCalls(t, "GetByID", 1)
	})

	t.Run("not found is returned and not cached", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		provider := new(mockProvider)
		provider.On("GetByID", mock.Anything, id).Return(nil, tenant.ErrTenantNotFound).Twice()
		dir := newDirectory(t, provider)

		for range 2 {
			_, err := dir.Resolve(context.Background(), id.String())
			assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
		}
		provider.AssertExpectations(t)
	})

	t.Run("inactive tenants are returned for explicit checks", func(t *testing.T) {
		t.Parallel()

		dormant := createTestTenant("dormant.example", false)
		provider := new(mockProvider)
		provider.On("GetByDomain", mock.Anything, "dormant.example").Return(dormant, nil)

		got, err := newDirectory(t, provider).Resolve(context.Background(), "dormant.example")
		require.NoError(t, err)
		assert.False(t, got.Active)
	})

	t.Run("store failures are wrapped", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("connection reset")
		provider := new(mockProvider)
		provider.On("GetByDomain", mock.Anything, "acme.example").Return(nil, boom)

		_, err := newDirectory(t, provider).Resolve(context.Background(), "acme.example")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("invalid identifiers never reach the provider", func(t *testing.T) {
		t.Parallel()

		provider := new(mockProvider)
		_, err := newDirectory(t, provider).Resolve(context.Background(), "not a tenant")
		assert.ErrorIs(t, err, tenant.ErrInvalidIdentifier)
		provider.AssertExpectations(t)
	})
}

func TestDirectory_ResolveFresh(t *testing.T) {
	t.Parallel()

	t.Run("observes deactivation hidden by the cache", func(t *testing.T) {
		t.Parallel()

		active := createTestTenant("acme.example", true)
		deactivated := *active
		deactivated.Active = false

		provider := new(mockProvider)
		provider.On("GetByID", mock.Anything, active.ID).Return(active, nil).Once()
		provider.On("GetByID", mock.Anything, active.ID).Return(&deactivated, nil).Once()
		dir := newDirectory(t, provider)

		cached, err := dir.Resolve(context.Background(), active.ID.String())
		require.NoError(t, err)
		require.True(t, cached.Active)

		fresh, err := dir.ResolveFresh(context.Background(), active.ID.String())
		require.NoError(t, err)
		assert.False(t, fresh.Active)

		// The refreshed record replaced the cached one.
		again, err := dir.Resolve(context.Background(), active.ID.String())
		require.NoError(t, err)
		assert.False(t, again.Active)
		provider.AssertNumberOfCalls(t, "GetByID", 2)
	})
}

func TestDirectory_Invalidate(t *testing.T) {
	t.Parallel()

	t.Run("drops the id key and the domain key together", func(t *testing.T) {
		t.Parallel()

		acme := createTestTenant("acme.example", true)
		provider := new(mockProvider)
		provider.On("GetByID", mock.Anything, acme.ID).Return(acme, nil)
		provider.On("GetByDomain", mock.Anything, "acme.example").Return(acme, nil)
		dir := newDirectory(t, provider)
		ctx := context.Background()

		_, err := dir.Resolve(ctx, acme.ID.String())
		require.NoError(t, err)
		_, err = dir.Resolve(ctx, "acme.example")
		require.NoError(t, err)

		dir.Invalidate(ctx, acme)

		_, err = dir.Resolve(ctx, acme.ID.String())
		require.NoError(t, err)
		_, err = dir.Resolve(ctx, "acme.example")
		require.NoError(t, err)

		provider.AssertNumberOfCalls(t, "GetByID", 2)
		provider.AssertNumberOfCalls(t, "GetByDomain", 2)
	})

	t.Run("old and new domains are both dropped on rename", func(t *testing.T) {
		t.Parallel()

		before := createTestTenant("old.example", true)
		after := *before
		after.Domain = "new.example"

		provider := new(mockProvider)
		provider.On("GetByDomain", mock.Anything, "old.example").Return(before, nil).Once()
		provider.On("GetByDomain", mock.Anything, "old.example").Return(nil, tenant.ErrTenantNotFound).Once()
		dir := newDirectory(t, provider)
		ctx := context.Background()

		_, err := dir.Resolve(ctx, "old.example")
		require.NoError(t, err)

		dir.Invalidate(ctx, before, &after)

		_, err = dir.Resolve(ctx, "old.example")
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
		provider.AssertExpectations(t)
	})
}

package tenant_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenant"
)

func TestHeaderResolver(t *testing.T) {
	t.Parallel()

	resolver := tenant.NewHeaderResolver("")

	t.Run("returns the literal header value", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(tenant.DefaultHeader, " 11111111-1111-1111-1111-111111111111 ")
		got, err := resolver.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "11111111-1111-1111-1111-111111111111", got)
	})

	t.Run("absent header yields empty identifier", func(t *testing.T) {
		t.Parallel()

		got, err := resolver.Resolve(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("malformed header is returned as sent", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(tenant.DefaultHeader, "drop table tenants")
		got, err := resolver.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "drop table tenants", got)

		_, err = tenant.ParseIdentifier(got)
		assert.ErrorIs(t, err, tenant.ErrInvalidIdentifier)
	})

	t.Run("custom header names are honoured", func(t *testing.T) {
		t.Parallel()

		legacy := tenant.NewHeaderResolver(tenant.DefaultLegacyHeader)
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(tenant.DefaultLegacyHeader, "acme.example")
		got, err := legacy.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "acme.example", got)
	})
}

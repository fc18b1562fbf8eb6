package main

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenantdb"
)

type stubCatalog struct {
	exists bool
	err    error
}

func (c stubCatalog) DatabaseExists(context.Context, string) (bool, error) { return c.exists, c.err }

type stubConn struct{ current string }

func (c stubConn) Database() string                                { return "" }
func (c stubConn) Ping(context.Context) error                      { return nil }
func (c stubConn) CurrentDatabase(context.Context) (string, error) { return c.current, nil }
func (c stubConn) Close() error                                    { return nil }

type stubConnector struct {
	current string
	err     error
}

func (c stubConnector) Open(context.Context, string) (tenantdb.Conn, error) {
	if c.err != nil {
		return nil, c.err
	}
	return stubConn{current: c.current}, nil
}

func TestCheckDatabase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	name := tenantdb.PhysicalName(id, tenantdb.ServiceCore)

	t.Run("verified database", func(t *testing.T) {
		t.Parallel()

		st := checkDatabase(ctx, tenantdb.ServiceCore, id, stubCatalog{exists: true}, stubConnector{current: name})
		assert.True(t, st.Exists)
		assert.True(t, st.Verified)
		assert.Empty(t, st.Error)
		assert.Equal(t, name, st.Database)
	})

	t.Run("missing database", func(t *testing.T) {
		t.Parallel()

		st := checkDatabase(ctx, tenantdb.ServiceCore, id, stubCatalog{},
			stubConnector{err: &pgconn.PgError{Code: "3D000"}})
		assert.False(t, st.Exists)
		assert.False(t, st.Verified)
		assert.Equal(t, "database does not exist", st.Error)
	})

	t.Run("misrouted connection", func(t *testing.T) {
		t.Parallel()

		st := checkDatabase(ctx, tenantdb.ServiceCore, id, stubCatalog{exists: true},
			stubConnector{current: "identity_central"})
		assert.False(t, st.Verified)
		assert.Contains(t, st.Error, "identity_central")
	})

	t.Run("catalog failure", func(t *testing.T) {
		t.Parallel()

		st := checkDatabase(ctx, tenantdb.ServiceCore, id, stubCatalog{err: errors.New("timeout")}, stubConnector{})
		assert.Equal(t, "timeout", st.Error)
	})
}

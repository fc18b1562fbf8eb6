package tenancy_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/audit"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/isolation"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenant"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenantdb"
)

const centralDB = "employee_central"

var (
	idA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	idB = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	idC = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

type memProvider struct {
	mu      sync.Mutex
	tenants map[uuid.UUID]*tenant.Tenant
}

func newMemProvider(ts ...*tenant.Tenant) *memProvider {
	p := &memProvider{tenants: map[uuid.UUID]*tenant.Tenant{}}
	for _, t := range ts {
		p.tenants[t.ID] = t
	}
	return p
}

func (p *memProvider) GetByID(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	cp := *t
	return &cp, nil
}

func (p *memProvider) GetByDomain(_ context.Context, domain string) (*tenant.Tenant, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.tenants {
		if t.Domain == domain {
			cp := *t
			return &cp, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

type memConn struct {
	database string
	current  string
}

func (c *memConn) Database() string                                { return c.database }
func (c *memConn) Ping(context.Context) error                      { return nil }
func (c *memConn) CurrentDatabase(context.Context) (string, error) { return c.current, nil }
func (c *memConn) Close() error                                    { return nil }

// memConnector opens connections that report their own name unless
// misrouted says otherwise.
type memConnector struct {
	mu        sync.Mutex
	misrouted map[string]string
	opened    []string
}

func (m *memConnector) Open(_ context.Context, database string) (tenantdb.Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened = append(m.opened, database)
	current := database
	if other, ok := m.misrouted[database]; ok {
		current = other
	}
	return &memConn{database: database, current: current}, nil
}

func (m *memConnector) tenantOpens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, db := range m.opened {
		if db != centralDB {
			n++
		}
	}
	return n
}

type memCatalog struct {
	missing map[string]bool
}

func (c memCatalog) DatabaseExists(_ context.Context, database string) (bool, error) {
	return !c.missing[database], nil
}

func newTenant(id uuid.UUID, domain string, active bool) *tenant.Tenant {
	return &tenant.Tenant{ID: id, Domain: domain, Name: domain, Active: active}
}

type env struct {
	workers   *tenantdb.Workers
	guard     *isolation.Guard
	events    *audit.MemoryStorage
	connector *memConnector
}

func newEnv(t *testing.T, catalog memCatalog, connector *memConnector) *env {
	t.Helper()

	dir := tenant.NewDirectory(newMemProvider(
		newTenant(idA, "acme.example", true),
		newTenant(idB, "globex.example", true),
		newTenant(idC, "initech.example", false),
	))
	t.Cleanup(func() { _ = dir.Close() })

	if connector == nil {
		connector = &memConnector{}
	}
	if catalog.missing == nil {
		catalog.missing = map[string]bool{}
	}

	workers, err := tenantdb.NewWorkers(2, func(int) (*tenantdb.Switcher, error) {
		pool := tenantdb.NewPool(connector, centralDB)
		return tenantdb.NewSwitcher(tenantdb.ServiceEmployee, dir, catalog, pool), nil
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = workers.Close(context.Background()) })

	events := audit.NewMemoryStorage()
	return &env{
		workers:   workers,
		guard:     isolation.NewGuard(dir, audit.NewRecorder(events)),
		events:    events,
		connector: connector,
	}
}

func (e *env) allCentral(t *testing.T) {
	t.Helper()
	for _, info := range e.workers.Info() {
		require.Equal(t, tenantdb.StateCentral, info.State)
		require.Equal(t, tenantdb.CentralKey, info.ActiveKey)
	}
}

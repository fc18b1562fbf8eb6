package tenantdb_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenant"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenantdb"
)

const centralDB = "employee_central"

type fakeConn struct {
	database string
	current  string
	pingErr  atomic.Pointer[error]
	closed   atomic.Bool
}

func (c *fakeConn) Database() string { return c.database }

func (c *fakeConn) Ping(context.Context) error {
	if c.closed.Load() {
		return errors.New("conn closed")
	}
	if err := c.pingErr.Load(); err != nil {
		return *err
	}
	return nil
}

func (c *fakeConn) CurrentDatabase(context.Context) (string, error) {
	if c.closed.Load() {
		return "", errors.New("conn closed")
	}
	return c.current, nil
}

func (c *fakeConn) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *fakeConn) failPing(err error) { c.pingErr.Store(&err) }

// fakeConnector opens fakeConns. reportAs makes a database report another
// name from current_database(), simulating a misrouted connection.
type fakeConnector struct {
	mu       sync.Mutex
	opens    map[string]int
	conns    []*fakeConn
	openErr  map[string]error
	reportAs map[string]string
	delay    time.Duration
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{
		opens:    map[string]int{},
		openErr:  map[string]error{},
		reportAs: map[string]string{},
	}
}

func (f *fakeConnector) Open(ctx context.Context, database string) (tenantdb.Conn, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.openErr[database]; err != nil {
		return nil, err
	}
	current := database
	if other, ok := f.reportAs[database]; ok {
		current = other
	}
	c := &fakeConn{database: database, current: current}
	f.opens[database]++
	f.conns = append(f.conns, c)
	return c, nil
}

func (f *fakeConnector) openCount(database string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens[database]
}

func (f *fakeConnector) last(database string) *fakeConn {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.conns) - 1; i >= 0; i-- {
		if f.conns[i].database == database {
			return f.conns[i]
		}
	}
	return nil
}

func (f *fakeConnector) setOpenErr(database string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openErr[database] = err
}

func (f *fakeConnector) setReportAs(database, current string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reportAs[database] = current
}

type fakeCatalog struct {
	mu      sync.Mutex
	missing map[string]bool
	err     error
}

func (c *fakeCatalog) DatabaseExists(_ context.Context, database string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	return !c.missing[database], nil
}

type fakeResolver struct {
	mu      sync.Mutex
	tenants map[string]*tenant.Tenant
	calls   int
	panics  bool
}

func newFakeResolver(tenants ...*tenant.Tenant) *fakeResolver {
	r := &fakeResolver{tenants: map[string]*tenant.Tenant{}}
	for _, t := range tenants {
		r.tenants[t.ID.String()] = t
		r.tenants[t.Domain] = t
	}
	return r
}

func (r *fakeResolver) ResolveFresh(_ context.Context, identifier string) (*tenant.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.panics {
		panic("resolver exploded")
	}
	t, ok := r.tenants[identifier]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return t, nil
}

func newTenant(id string, domain string, active bool) *tenant.Tenant {
	return &tenant.Tenant{ID: uuid.MustParse(id), Domain: domain, Name: domain, Active: active}
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

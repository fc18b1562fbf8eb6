package tenantdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/logger"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenant"
)

// DefaultOperationTimeout bounds resolve, probe, acquire and verify.
const DefaultOperationTimeout = 10 * time.Second

// Resolver is the authoritative tenant lookup used at switch time. It must not
// serve an "active" flag from cache; tenant.Directory.ResolveFresh satisfies it.
type Resolver interface {
	ResolveFresh(ctx context.Context, identifier string) (*tenant.Tenant, error)
}

// ConnectionInfo describes the active connection context of one Switcher.
type ConnectionInfo struct {
	Service          Service `json:"service"`
	State            State   `json:"state"`
	ActiveKey        string  `json:"active_key"`
	PhysicalDatabase string  `json:"physical_database"`
	TenantID         string  `json:"tenant_id,omitempty"`
	PoolSize         int     `json:"pool_size"`
}

// Switcher owns the active connection context of one worker. It starts in
// StateCentral, moves to StateTenantActive only after the tenant connection
// has been verified, and every failure leaves it in StateCentral.
type Switcher struct {
	service  Service
	resolver Resolver
	catalog  Catalog
	pool     *Pool
	log      *slog.Logger
	metrics  *Metrics
	timeout  time.Duration
	now      func() time.Time

	mu     sync.Mutex
	active activeContext
}

type SwitcherOption func(*Switcher)

func WithLogger(l *slog.Logger) SwitcherOption {
	return func(s *Switcher) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *Metrics) SwitcherOption {
	return func(s *Switcher) { s.metrics = m }
}

// WithOperationTimeout bounds each network step of a switch.
func WithOperationTimeout(d time.Duration) SwitcherOption {
	return func(s *Switcher) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewSwitcher creates a Switcher routing into service databases through pool.
func NewSwitcher(service Service, resolver Resolver, catalog Catalog, pool *Pool, opts ...SwitcherOption) *Switcher {
	if !service.Valid() {
		panic(fmt.Sprintf("tenantdb: switcher for invalid service %s", service))
	}
	if resolver == nil || catalog == nil || pool == nil {
		panic("tenantdb: resolver, catalog and pool are required")
	}
	s := &Switcher{
		service:  service,
		resolver: resolver,
		catalog:  catalog,
		pool:     pool,
		log:      logger.Discard(),
		timeout:  DefaultOperationTimeout,
		now:      time.Now,
		active:   activeContext{state: StateCentral, key: CentralKey, database: pool.CentralDatabase()},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Service(service.String()))
	return s
}

// Service returns the service family this switcher routes into.
func (s *Switcher) Service() Service {
	return s.service
}

// SwitchToTenant makes the tenant named by identifier the active target.
//
// The tenant is resolved without cache, must be active, and its database must
// exist on the engine. The pooled connection is activated and then verified
// by asking the engine for its current database. Any failure, including a
// panic, restores the central context before returning.
func (s *Switcher) SwitchToTenant(ctx context.Context, identifier string) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	t, err := s.switchToTenant(ctx, identifier)
	s.metrics.switched(s.service, err, s.now().Sub(start))
	return t, err
}

func (s *Switcher) switchToTenant(ctx context.Context, identifier string) (t *tenant.Tenant, err error) {
	completed := false
	defer func() {
		if completed {
			return
		}
		// Reached on error and while a panic unwinds.
		if restoreErr := s.switchToCentral(ctx); restoreErr != nil {
			err = errors.Join(err, restoreErr)
		}
	}()

	fail := func(op, database string, tenantID uuid.UUID, cause error) error {
		e := &SwitchError{Op: op, Identifier: identifier, Service: s.service, Database: database, Err: cause}
		if tenantID != uuid.Nil {
			e.TenantID = tenantID.String()
		}
		attrs := append(e.LogAttrs(), logger.Error(cause), slog.String("outcome", Outcome(cause)))
		s.log.LogAttrs(ctx, slog.LevelWarn, "switch to tenant failed", attrs...)
		return e
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	t, err = s.resolver.ResolveFresh(opCtx, identifier)
	if err != nil {
		return nil, fail("resolve", "", uuid.Nil, err)
	}
	if !t.Active {
		return nil, fail("resolve", "", t.ID, tenant.ErrInactiveTenant)
	}

	database := PhysicalName(t.ID, s.service)
	exists, err := s.catalog.DatabaseExists(opCtx, database)
	if err != nil {
		return nil, fail("probe", database, t.ID, errors.Join(ErrConnectionUnavailable, err))
	}
	if !exists {
		return nil, fail("probe", database, t.ID, ErrDatabaseNotProvisioned)
	}

	conn, err := s.pool.Acquire(opCtx, t.ID, s.service)
	if err != nil {
		return nil, fail("acquire", database, t.ID, err)
	}
	s.active.activateTenant(t.ID, database, conn)
	if err := verify(opCtx, conn, database); err != nil {
		// The entry cannot be trusted for any later request either.
		s.pool.evict(database, evictVerification)
		return nil, fail("verify", database, t.ID, err)
	}

	completed = true
	s.log.DebugContext(ctx, "switched to tenant database",
		logger.TenantID(t.ID.String()), logger.Database(database))
	return t, nil
}

// SwitchToCentral evicts every tenant connection and makes the verified
// central connection the active target. It runs to completion even when ctx
// is already cancelled, bounded by the operation timeout.
func (s *Switcher) SwitchToCentral(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.switchToCentral(ctx)
}

func (s *Switcher) switchToCentral(ctx context.Context) (err error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	defer func() { s.metrics.restored(s.service, err) }()

	central := s.pool.CentralDatabase()
	// Drop the tenant target before anything can fail.
	s.active.restoreCentral(central, nil)

	if n := s.pool.EvictTenantConnections(); n > 0 {
		s.log.DebugContext(ctx, "tenant connections evicted", slog.Int("count", n))
	}

	conn, err := s.pool.Central(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "central connection unavailable", logger.Database(central), logger.Error(err))
		return &SwitchError{Op: "switch_to_central", Service: s.service, Database: central, Err: err}
	}
	if err := verify(ctx, conn, central); err != nil {
		s.pool.evict(CentralKey, evictVerification)
		s.log.ErrorContext(ctx, "central connection failed verification", logger.Database(central), logger.Error(err))
		return &SwitchError{Op: "switch_to_central", Service: s.service, Database: central, Err: err}
	}

	s.active.restoreCentral(central, conn)
	return nil
}

// verify confirms that conn serves exactly the expected database.
func verify(ctx context.Context, conn Conn, expected string) error {
	got, err := conn.CurrentDatabase(ctx)
	if err != nil {
		return errors.Join(ErrConnectionVerificationFailed, err)
	}
	if got != expected {
		return fmt.Errorf("%w: connection serves %q, expected %q", ErrConnectionVerificationFailed, got, expected)
	}
	return nil
}

// ConnectionInfo reports the active context and pool size.
func (s *Switcher) ConnectionInfo() ConnectionInfo {
	s.mu.Lock()
	a := s.active
	s.mu.Unlock()

	info := ConnectionInfo{
		Service:          s.service,
		State:            a.state,
		ActiveKey:        a.key,
		PhysicalDatabase: a.database,
		PoolSize:         s.pool.Size(),
	}
	if a.state == StateTenantActive {
		info.TenantID = a.tenantID.String()
	}
	return info
}

// Entries returns a snapshot of the switcher's pool.
func (s *Switcher) Entries() []EntryInfo {
	return s.pool.Entries()
}

// Sweep evicts idle tenant connections of the switcher's pool.
func (s *Switcher) Sweep(maxIdle time.Duration) int {
	return s.pool.Sweep(maxIdle)
}

// activeConn returns the connection of the active context, or nil.
func (s *Switcher) activeConn() Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.conn
}

// Close releases the pool. The switcher must not be used afterwards.
func (s *Switcher) Close() error {
	s.mu.Lock()
	s.active.restoreCentral(s.pool.CentralDatabase(), nil)
	s.mu.Unlock()
	return s.pool.Close()
}

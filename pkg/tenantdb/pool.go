package tenantdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/logger"
)

// DefaultIdleThreshold is the idle age after which Sweep evicts an entry.
const DefaultIdleThreshold = 30 * time.Minute

// Eviction reasons reported to metrics.
const (
	evictProbeFailed  = "probe_failed"
	evictIdle         = "idle"
	evictReleased     = "released"
	evictVerification = "verification_failed"
	evictReplaced     = "replaced"
	evictManual       = "manual"
)

type entry struct {
	conn       Conn
	name       string
	database   string
	createdAt  time.Time
	lastUsedAt time.Time
}

// EntryInfo is a snapshot of one pool entry.
type EntryInfo struct {
	Name       string    `json:"name"`
	Database   string    `json:"database"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// Pool is a registry of named connections: the central connection plus at
// most one entry per (tenant, service). Cached entries are probed before reuse
// and a failed probe evicts them. Concurrent acquisitions of one key share a
// single open.
type Pool struct {
	connector Connector
	central   string
	service   Service
	now       func() time.Time
	log       *slog.Logger
	metrics   *Metrics
	timeout   time.Duration

	group   singleflight.Group
	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
}

type PoolOption func(*Pool)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) PoolOption {
	return func(p *Pool) {
		if now != nil {
			p.now = now
		}
	}
}

func WithPoolLogger(l *slog.Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.log = l
		}
	}
}

func WithPoolMetrics(m *Metrics) PoolOption {
	return func(p *Pool) { p.metrics = m }
}

// WithPoolTimeout bounds each probe and open. Zero leaves the caller's deadline.
func WithPoolTimeout(d time.Duration) PoolOption {
	return func(p *Pool) { p.timeout = d }
}

// WithPoolService labels metrics with the service this pool routes for.
func WithPoolService(s Service) PoolOption {
	return func(p *Pool) { p.service = s }
}

// NewPool creates a pool whose central entry opens centralDatabase.
func NewPool(connector Connector, centralDatabase string, opts ...PoolOption) *Pool {
	if connector == nil {
		panic("tenantdb: connector cannot be nil")
	}
	p := &Pool{
		connector: connector,
		central:   centralDatabase,
		now:       time.Now,
		log:       logger.Discard(),
		entries:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CentralDatabase is the physical name of the central database.
func (p *Pool) CentralDatabase() string {
	return p.central
}

// Acquire returns a live connection to the database of tenantID for service.
// A cached entry is reused only after a successful liveness probe; otherwise it
// is evicted and a fresh connection is opened. Errors wrap ErrConnectionUnavailable;
// Acquire never substitutes another database.
func (p *Pool) Acquire(ctx context.Context, tenantID uuid.UUID, service Service) (Conn, error) {
	name := PhysicalName(tenantID, service)
	return p.acquire(ctx, name, name)
}

// Central returns the central connection.
func (p *Pool) Central(ctx context.Context) (Conn, error) {
	return p.acquire(ctx, CentralKey, p.central)
}

func (p *Pool) acquire(ctx context.Context, key, database string) (Conn, error) {
	v, err, _ := p.group.Do(key, func() (any, error) {
		return p.acquireKey(ctx, key, database)
	})
	if err != nil {
		return nil, err
	}
	return v.(Conn), nil
}

func (p *Pool) acquireKey(ctx context.Context, key, database string) (Conn, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errors.Join(ErrConnectionUnavailable, ErrPoolClosed)
	}
	cached := p.entries[key]
	p.mu.Unlock()

	if cached != nil {
		err := p.probe(ctx, cached.conn)
		if err == nil {
			p.mu.Lock()
			cached.lastUsedAt = p.now()
			p.mu.Unlock()
			p.metrics.poolReused(p.service)
			return cached.conn, nil
		}
		p.log.WarnContext(ctx, "pooled connection failed liveness probe",
			logger.PoolKey(key), logger.Database(database), logger.Error(err))
		p.remove(key, cached, evictProbeFailed)
	}

	conn, err := p.open(ctx, database)
	if err != nil {
		return nil, errors.Join(ErrConnectionUnavailable, fmt.Errorf("open %q: %w", database, err))
	}

	now := p.now()
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = conn.Close()
		return nil, errors.Join(ErrConnectionUnavailable, ErrPoolClosed)
	}
	replaced := p.entries[key]
	p.entries[key] = &entry{conn: conn, name: key, database: database, createdAt: now, lastUsedAt: now}
	p.mu.Unlock()

	if replaced != nil {
		p.closeEntry(replaced, evictReplaced)
	}
	p.metrics.poolOpened(p.service)
	p.log.DebugContext(ctx, "pooled connection opened", logger.PoolKey(key), logger.Database(database))
	return conn, nil
}

func (p *Pool) probe(ctx context.Context, conn Conn) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return conn.Ping(ctx)
}

func (p *Pool) open(ctx context.Context, database string) (Conn, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.connector.Open(ctx, database)
}

func (p *Pool) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

// remove evicts key only if it still maps to e.
func (p *Pool) remove(key string, e *entry, reason string) {
	p.mu.Lock()
	if p.entries[key] != e {
		p.mu.Unlock()
		return
	}
	delete(p.entries, key)
	p.mu.Unlock()
	p.closeEntry(e, reason)
}

func (p *Pool) closeEntry(e *entry, reason string) {
	if err := e.conn.Close(); err != nil {
		p.log.Warn("closing pooled connection failed",
			logger.PoolKey(e.name), logger.Database(e.database), logger.Error(err))
	}
	p.metrics.poolEvicted(p.service, reason)
}

// Evict closes and removes the entry under key. It reports whether one existed.
func (p *Pool) Evict(key string) bool {
	return p.evict(key, evictManual)
}

func (p *Pool) evict(key, reason string) bool {
	p.mu.Lock()
	e, ok := p.entries[key]
	if ok {
		delete(p.entries, key)
	}
	p.mu.Unlock()
	if ok {
		p.closeEntry(e, reason)
	}
	return ok
}

// EvictTenantConnections closes every entry except the central one and
// returns how many were evicted.
func (p *Pool) EvictTenantConnections() int {
	return len(p.evictWhere(evictReleased, func(e *entry) bool { return e.name != CentralKey }))
}

// Sweep evicts tenant entries unused for longer than maxIdle and returns how
// many were evicted. The central entry is never swept. A non-positive maxIdle
// uses DefaultIdleThreshold.
func (p *Pool) Sweep(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		maxIdle = DefaultIdleThreshold
	}
	now := p.now()
	evicted := p.evictWhere(evictIdle, func(e *entry) bool {
		return e.name != CentralKey && now.Sub(e.lastUsedAt) > maxIdle
	})
	if len(evicted) > 0 {
		p.log.Debug("idle pooled connections swept", slog.Any("keys", evicted))
	}
	return len(evicted)
}

func (p *Pool) evictWhere(reason string, match func(*entry) bool) []string {
	p.mu.Lock()
	var victims []*entry
	for key, e := range p.entries {
		if match(e) {
			victims = append(victims, e)
			delete(p.entries, key)
		}
	}
	p.mu.Unlock()

	keys := make([]string, 0, len(victims))
	for _, e := range victims {
		p.closeEntry(e, reason)
		keys = append(keys, e.name)
	}
	return keys
}

// Size returns the number of entries, central included.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Entries returns a snapshot of all entries ordered by name.
func (p *Pool) Entries() []EntryInfo {
	p.mu.Lock()
	out := make([]EntryInfo, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, EntryInfo{Name: e.name, Database: e.database, CreatedAt: e.createdAt, LastUsedAt: e.lastUsedAt})
	}
	p.mu.Unlock()
	slices.SortFunc(out, func(a, b EntryInfo) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Close closes every entry. Acquire fails afterwards.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	entries := p.entries
	p.entries = make(map[string]*entry)
	p.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if err := e.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", e.database, err))
		}
	}
	return errors.Join(errs...)
}

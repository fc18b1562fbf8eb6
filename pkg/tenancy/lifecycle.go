package tenancy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/audit"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/logger"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenant"
)

var ErrProvisioningFailed = errors.New("tenant provisioning failed")

// Lifecycle event types.
const (
	EventProvisioned = "tenant.provisioned"
	EventActivated   = "tenant.activated"
	EventDeactivated = "tenant.deactivated"
	EventRenamed     = "tenant.renamed"
	EventDeleted     = "tenant.deleted"
)

// TenantStore is the writable tenant directory. *tenant.Store implements it.
type TenantStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
	Create(ctx context.Context, t *tenant.Tenant) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*tenant.Tenant, error)
	UpdateDomain(ctx context.Context, id uuid.UUID, domain string) (*tenant.Tenant, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Invalidator drops cached directory entries. *tenant.Directory implements it.
type Invalidator interface {
	Invalidate(ctx context.Context, tenants ...*tenant.Tenant)
}

// DatabaseProvisioner creates and drops the per-service databases of a
// tenant. *tenantdb.Provisioner implements it.
type DatabaseProvisioner interface {
	Create(ctx context.Context, tenantID uuid.UUID) error
	Drop(ctx context.Context, tenantID uuid.UUID) error
}

// Recorder records lifecycle events. *audit.Recorder implements it.
type Recorder interface {
	Record(ctx context.Context, eventType string, severity audit.Severity, opts ...audit.EventOption) error
}

// Lifecycle changes tenants and keeps the directory cache and the physical
// databases consistent with the record.
type Lifecycle struct {
	store       TenantStore
	cache       Invalidator
	provisioner DatabaseProvisioner
	recorder    Recorder
	log         *slog.Logger
	newID       func() uuid.UUID
}

type LifecycleOption func(*Lifecycle)

func WithLifecycleLogger(l *slog.Logger) LifecycleOption {
	return func(lc *Lifecycle) {
		if l != nil {
			lc.log = l
		}
	}
}

func WithRecorder(r Recorder) LifecycleOption {
	return func(lc *Lifecycle) { lc.recorder = r }
}

func withIDGenerator(fn func() uuid.UUID) LifecycleOption {
	return func(lc *Lifecycle) { lc.newID = fn }
}

func NewLifecycle(store TenantStore, cache Invalidator, provisioner DatabaseProvisioner, opts ...LifecycleOption) *Lifecycle {
	lc := &Lifecycle{
		store:       store,
		cache:       cache,
		provisioner: provisioner,
		log:         logger.Discard(),
		newID:       uuid.New,
	}
	for _, opt := range opts {
		opt(lc)
	}
	return lc
}

// Provision registers a tenant and creates its service databases. The record
// stays inactive until every database exists, so a half-provisioned tenant is
// never routable. Provision can be retried with Activate after fixing the
// cause: existing databases are kept.
func (lc *Lifecycle) Provision(ctx context.Context, domain, name string) (*tenant.Tenant, error) {
	t := &tenant.Tenant{ID: lc.newID(), Domain: domain, Name: name}
	if err := lc.store.Create(ctx, t); err != nil {
		return nil, err
	}
	if err := lc.provisioner.Create(ctx, t.ID); err != nil {
		lc.log.ErrorContext(ctx, "tenant databases not created",
			logger.TenantID(t.ID.String()), logger.Error(err))
		return t, errors.Join(ErrProvisioningFailed, err)
	}

	active, err := lc.store.SetActive(ctx, t.ID, true)
	if err != nil {
		return t, fmt.Errorf("activate provisioned tenant: %w", err)
	}
	lc.cache.Invalidate(ctx, active)
	lc.record(ctx, EventProvisioned, active)
	lc.log.InfoContext(ctx, "tenant provisioned",
		logger.TenantID(active.ID.String()), slog.String("domain", active.Domain))
	return active, nil
}

func (lc *Lifecycle) Activate(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return lc.setActive(ctx, id, true)
}

// Deactivate makes the tenant unroutable. Switches already past the activity
// check finish; new ones are refused as soon as the cache entries are gone.
func (lc *Lifecycle) Deactivate(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return lc.setActive(ctx, id, false)
}

func (lc *Lifecycle) setActive(ctx context.Context, id uuid.UUID, active bool) (*tenant.Tenant, error) {
	t, err := lc.store.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	lc.cache.Invalidate(ctx, t)

	event := EventDeactivated
	if active {
		event = EventActivated
	}
	lc.record(ctx, event, t)
	lc.log.InfoContext(ctx, "tenant activity changed",
		logger.TenantID(t.ID.String()), slog.Bool("active", active))
	return t, nil
}

// Rename changes the tenant domain and drops the id key and both domain keys.
func (lc *Lifecycle) Rename(ctx context.Context, id uuid.UUID, domain string) (*tenant.Tenant, error) {
	old, err := lc.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := lc.store.UpdateDomain(ctx, id, domain)
	if err != nil {
		return nil, err
	}
	lc.cache.Invalidate(ctx, old, t)
	lc.record(ctx, EventRenamed, t, audit.WithMetadata("previous_domain", old.Domain))
	lc.log.InfoContext(ctx, "tenant renamed", logger.TenantID(t.ID.String()),
		slog.String("from", old.Domain), slog.String("to", t.Domain))
	return t, nil
}

// Delete removes a tenant in two phases: the tenant is deactivated first so
// no new request can route to it, then its databases are dropped and the
// record removed. A failed drop leaves the tenant deactivated, and Delete
// can be run again.
func (lc *Lifecycle) Delete(ctx context.Context, id uuid.UUID) error {
	t, err := lc.store.SetActive(ctx, id, false)
	if err != nil {
		return err
	}
	lc.cache.Invalidate(ctx, t)

	if err := lc.provisioner.Drop(ctx, id); err != nil {
		lc.log.ErrorContext(ctx, "tenant databases not dropped",
			logger.TenantID(id.String()), logger.Error(err))
		return err
	}
	if err := lc.store.Delete(ctx, id); err != nil {
		return err
	}
	lc.cache.Invalidate(ctx, t)
	lc.record(ctx, EventDeleted, t)
	lc.log.InfoContext(ctx, "tenant deleted", logger.TenantID(id.String()))
	return nil
}

func (lc *Lifecycle) record(ctx context.Context, event string, t *tenant.Tenant, extra ...audit.EventOption) {
	if lc.recorder == nil {
		return
	}
	opts := append([]audit.EventOption{
		audit.WithTenant(t.ID.String()),
		audit.WithMetadata("domain", t.Domain),
	}, extra...)
	if err := lc.recorder.Record(ctx, event, audit.SeverityInfo, opts...); err != nil {
		lc.log.WarnContext(ctx, "lifecycle event not recorded",
			logger.Event(event), logger.TenantID(t.ID.String()), logger.Error(err))
	}
}

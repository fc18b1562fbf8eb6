package isolation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/audit"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/logger"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenant"
)

var (
	ErrCrossTenantAccess       = errors.New("cross-tenant access denied")
	ErrMissingTenantIdentifier = errors.New("missing tenant identifier")
)

// Security event types.
const (
	EventBypass            = "tenant_isolation.bypass"
	EventCrossTenantAccess = "tenant_isolation.cross_tenant_access"
	EventDomainMismatch    = "tenant_isolation.domain_mismatch"
)

// Reason explains a decision.
type Reason string

const (
	ReasonAllowed           Reason = "allowed"
	ReasonBypass            Reason = "platform credential without tenant"
	ReasonMissingIdentifier Reason = "missing tenant identifier"
	ReasonTenantUnavailable Reason = "tenant not found or inactive"
	ReasonCrossTenant       Reason = "cross-tenant access"
	ReasonDomainMismatch    Reason = "tenant domain mismatch"
)

// Directory resolves the credential's tenant.
type Directory interface {
	Resolve(ctx context.Context, identifier string) (*tenant.Tenant, error)
}

// Sink records security events. *audit.Recorder implements it.
type Sink interface {
	Record(ctx context.Context, eventType string, severity audit.Severity, opts ...audit.EventOption) error
}

// Request is the identity material of one inbound request.
type Request struct {
	CredentialTenantID  string // tenant bound to the credential; empty for platform credentials
	CredentialRef       string // key id or fingerprint of the credential, never the secret
	ActorID             string
	Role                string
	RequestedIdentifier string // literal value of the tenant header
	LegacyDomain        string // value of the legacy domain header, if any
	ClientIP            string
	RequestID           string
}

// Decision is the outcome of Authorize. Tenant is set when the request is
// bound to a resolved tenant.
type Decision struct {
	Allowed  bool
	Bypassed bool
	Reason   Reason
	Tenant   *tenant.Tenant
}

// Guard decides whether a request may be routed to the tenant it names.
type Guard struct {
	directory Directory
	sink      Sink
	log       *slog.Logger
	metrics   *Metrics
}

type Option func(*Guard)

func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.log = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(g *Guard) { g.metrics = m }
}

func NewGuard(directory Directory, sink Sink, opts ...Option) *Guard {
	if directory == nil || sink == nil {
		panic("isolation: directory and sink are required")
	}
	g := &Guard{directory: directory, sink: sink, log: logger.Discard()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authorize applies the isolation rules in order:
//
//  1. A credential without a tenant bypasses isolation; the bypass is recorded.
//  2. The request must name a tenant.
//  3. The credential's tenant must exist and be active.
//  4. The named tenant must be exactly the credential's tenant id. A mismatch
//     records a high severity security event.
//  5. A legacy domain header, when present, must match the tenant's domain.
//
// A denial is returned both as a Decision and as an error wrapping the cause.
// Failing to record an event never turns a denial into an allow.
func (g *Guard) Authorize(ctx context.Context, req Request) (Decision, error) {
	d, err := g.authorize(ctx, req)
	g.metrics.decided(d)
	return d, err
}

func (g *Guard) authorize(ctx context.Context, req Request) (Decision, error) {
	if req.CredentialTenantID == "" {
		g.record(ctx, EventBypass, audit.SeverityInfo, req)
		g.log.InfoContext(ctx, "tenant isolation bypassed",
			slog.String("actor_id", req.ActorID),
			slog.String("role", req.Role),
			slog.String("requested_tenant", req.RequestedIdentifier))
		return Decision{Allowed: true, Bypassed: true, Reason: ReasonBypass}, nil
	}

	if req.RequestedIdentifier == "" {
		return deny(ReasonMissingIdentifier), ErrMissingTenantIdentifier
	}

	t, err := g.directory.Resolve(ctx, req.CredentialTenantID)
	switch {
	case err == nil && !t.Active:
		err = tenant.ErrInactiveTenant
	case errors.Is(err, tenant.ErrInvalidIdentifier):
		err = errors.Join(tenant.ErrTenantNotFound, err)
	}
	if err != nil {
		g.log.WarnContext(ctx, "credential tenant unavailable",
			logger.TenantID(req.CredentialTenantID), logger.Error(err))
		return deny(ReasonTenantUnavailable), fmt.Errorf("credential tenant %q: %w", req.CredentialTenantID, err)
	}

	if req.RequestedIdentifier != req.CredentialTenantID {
		g.record(ctx, EventCrossTenantAccess, audit.SeverityHigh, req)
		g.log.WarnContext(ctx, "cross-tenant access denied",
			logger.TenantID(req.CredentialTenantID),
			slog.String("requested_tenant", req.RequestedIdentifier),
			slog.String("credential_ref", req.CredentialRef))
		return deny(ReasonCrossTenant), ErrCrossTenantAccess
	}

	if req.LegacyDomain != "" && tenant.NormalizeDomain(req.LegacyDomain) != tenant.NormalizeDomain(t.Domain) {
		g.record(ctx, EventDomainMismatch, audit.SeverityMedium, req,
			audit.WithMetadata("tenant_domain", t.Domain))
		g.log.WarnContext(ctx, "legacy tenant domain mismatch",
			logger.TenantID(req.CredentialTenantID),
			slog.String("legacy_domain", req.LegacyDomain))
		return deny(ReasonDomainMismatch), fmt.Errorf("%w: %s", ErrCrossTenantAccess, ReasonDomainMismatch)
	}

	return Decision{Allowed: true, Reason: ReasonAllowed, Tenant: t}, nil
}

func deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

func (g *Guard) record(ctx context.Context, eventType string, severity audit.Severity, req Request, extra ...audit.EventOption) {
	opts := []audit.EventOption{
		audit.WithTenant(req.CredentialTenantID),
		audit.WithRequestedTenant(req.RequestedIdentifier),
		audit.WithActor(req.ActorID),
		audit.WithCredentialRef(req.CredentialRef),
		audit.WithIP(req.ClientIP),
		audit.WithRequestID(req.RequestID),
	}
	if req.Role != "" {
		opts = append(opts, audit.WithMetadata("role", req.Role))
	}
	if req.LegacyDomain != "" {
		opts = append(opts, audit.WithMetadata("legacy_domain", req.LegacyDomain))
	}
	opts = append(opts, extra...)

	if err := g.sink.Record(ctx, eventType, severity, opts...); err != nil {
		g.log.ErrorContext(ctx, "security event not recorded",
			logger.Event(eventType), logger.TenantID(req.CredentialTenantID), logger.Error(err))
	}
}

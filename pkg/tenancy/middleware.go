package tenancy

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/clientip"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/credential"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/isolation"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/logger"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/requestid"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenant"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenantdb"
)

// Runner executes a function inside a routed connection context.
// *tenantdb.Workers implements it.
type Runner interface {
	Do(ctx context.Context, identifier string, fn func(ctx context.Context, h *tenantdb.Handle) error) error
	DoCentral(ctx context.Context, fn func(ctx context.Context, h *tenantdb.Handle) error) error
}

// Authorizer decides whether a request may reach the tenant it names.
// *isolation.Guard implements it.
type Authorizer interface {
	Authorize(ctx context.Context, req isolation.Request) (isolation.Decision, error)
}

type config struct {
	resolver     tenant.Resolver
	legacyHeader string
	skipPaths    []string
	errorHandler ErrorHandler
	log          *slog.Logger
}

type Option func(*config)

// WithTenantHeader sets the header carrying the requested tenant.
func WithTenantHeader(name string) Option {
	return func(c *config) { c.resolver = tenant.NewHeaderResolver(name) }
}

// WithLegacyDomainHeader sets the legacy domain header. An empty name disables it.
func WithLegacyDomainHeader(name string) Option {
	return func(c *config) { c.legacyHeader = name }
}

// WithSkipPaths sets path prefixes served without routing.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) { c.skipPaths = append(c.skipPaths, paths...) }
}

func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// Middleware routes every request to the database of its tenant for the
// duration of the handler:
//
//	credential -> isolation guard -> worker checkout -> switch and verify ->
//	handler -> switch back to central -> worker return
//
// The handler runs only on a verified connection and the worker is always
// returned on central, also when the handler panics. The handle and the
// routed tenant are available to the handler through HandleFromContext and
// tenant.FromContext.
//
// Requests without a credential are refused. A platform credential without a
// tenant that names no tenant runs on the central connection. The header is
// handed to the guard as sent; its syntax is checked only after the guard
// allowed the request, so a malformed value from a tenant-bound credential
// is denied and recorded as cross-tenant access.
func Middleware(runner Runner, guard Authorizer, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		resolver:     tenant.NewHeaderResolver(tenant.DefaultHeader),
		legacyHeader: tenant.DefaultLegacyHeader,
		errorHandler: DefaultErrorHandler,
		log:          logger.Discard(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := r.Context()
			cred, ok := credential.FromContext(ctx)
			if !ok {
				cfg.errorHandler(w, r, ErrUnauthenticated)
				return
			}

			requested, err := cfg.resolver.Resolve(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			req := isolation.Request{
				CredentialTenantID:  cred.TenantID,
				CredentialRef:       cred.Ref,
				ActorID:             cred.Subject,
				Role:                cred.Role,
				RequestedIdentifier: requested,
				ClientIP:            clientIP(r),
				RequestID:           requestid.FromContext(ctx),
			}
			if cfg.legacyHeader != "" {
				req.LegacyDomain = strings.TrimSpace(r.Header.Get(cfg.legacyHeader))
			}

			decision, err := guard.Authorize(ctx, req)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			target := requested
			if !decision.Bypassed && decision.Tenant != nil {
				target = decision.Tenant.ID.String()
			}
			if target != "" {
				if _, err := tenant.ParseIdentifier(target); err != nil {
					cfg.errorHandler(w, r, err)
					return
				}
			}

			served := false
			serve := func(ctx context.Context, h *tenantdb.Handle) error {
				ctx = WithHandle(ctx, h)
				if t := h.Tenant(); t != nil {
					ctx = tenant.WithTenant(ctx, t)
				}
				served = true
				next.ServeHTTP(w, r.WithContext(ctx))
				return nil
			}

			if target == "" {
				err = runner.DoCentral(ctx, serve)
			} else {
				err = runner.Do(ctx, target, serve)
			}
			if err == nil {
				return
			}
			if served {
				// The response is written; only the restore failed.
				cfg.log.ErrorContext(ctx, "restoring central connection after request failed", logger.Error(err))
				return
			}
			cfg.log.WarnContext(ctx, "tenant routing failed",
				logger.TenantID(target), slog.String("code", Code(err)), logger.Error(err))
			cfg.errorHandler(w, r, err)
		})
	}
}

func clientIP(r *http.Request) string {
	if ip := clientip.FromContext(r.Context()); ip != "" {
		return ip
	}
	return clientip.GetIP(r)
}

package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type routedKey struct{}

// WithTenant records the tenant a request has been routed to. Only the
// routing middleware sets it, after the tenant connection is verified.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, routedKey{}, t)
}

// FromContext returns the routed tenant. Requests served on the central
// connection have none.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, _ := ctx.Value(routedKey{}).(*Tenant)
	return t, t != nil
}

func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if t, ok := FromContext(ctx); ok {
		return t.ID, true
	}
	return uuid.Nil, false
}

// LoggerExtractor adds tenant_id to records logged while a tenant is routed.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		id, ok := IDFromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return slog.String("tenant_id", id.String()), true
	}
}

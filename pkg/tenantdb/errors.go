package tenantdb

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrUnknownService               = errors.New("unknown service")
	ErrDatabaseNotProvisioned       = errors.New("tenant database is not provisioned")
	ErrConnectionUnavailable        = errors.New("database connection unavailable")
	ErrConnectionVerificationFailed = errors.New("database connection verification failed")
	ErrPoolClosed                   = errors.New("connection pool is closed")
	ErrWorkersClosed                = errors.New("connection workers are closed")
	ErrInvalidConfig                = errors.New("invalid tenantdb configuration")
)

// SwitchError describes a failed switch with enough context to diagnose it
// from logs alone. It unwraps to the underlying sentinel.
type SwitchError struct {
	Op         string
	Identifier string
	TenantID   string
	Service    Service
	Database   string
	Err        error
}

func (e *SwitchError) Error() string {
	target := e.Database
	if target == "" {
		target = e.Identifier
	}
	return fmt.Sprintf("tenantdb %s %s (%s): %v", e.Op, target, e.Service, e.Err)
}

func (e *SwitchError) Unwrap() error { return e.Err }

// LogAttrs returns the diagnosis context as log attributes.
func (e *SwitchError) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("op", e.Op), slog.String("service", e.Service.String())}
	if e.Identifier != "" {
		attrs = append(attrs, slog.String("identifier", e.Identifier))
	}
	if e.TenantID != "" {
		attrs = append(attrs, slog.String("tenant_id", e.TenantID))
	}
	if e.Database != "" {
		attrs = append(attrs, slog.String("database", e.Database))
	}
	return attrs
}

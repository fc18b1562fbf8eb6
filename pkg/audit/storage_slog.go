package audit

import (
	"context"
	"log/slog"
)

// SlogStorage writes events to a structured logger. High and critical events
// are logged at error level so log-based alerting picks them up.
type SlogStorage struct {
	log *slog.Logger
}

func NewSlogStorage(log *slog.Logger) *SlogStorage {
	return &SlogStorage{log: log}
}

func (s *SlogStorage) Store(ctx context.Context, e Event) error {
	level := slog.LevelInfo
	switch e.Severity {
	case SeverityMedium:
		level = slog.LevelWarn
	case SeverityHigh, SeverityCritical:
		level = slog.LevelError
	}

	attrs := []slog.Attr{
		slog.String("event_id", e.ID.String()),
		slog.String("event", e.Type),
		slog.String("severity", string(e.Severity)),
	}
	for _, kv := range [][2]string{
		{"tenant_id", e.TenantID},
		{"requested_tenant", e.RequestedTenant},
		{"actor_id", e.ActorID},
		{"credential_ref", e.CredentialRef},
		{"client_ip", e.IP},
		{"request_id", e.RequestID},
	} {
		if kv[1] != "" {
			attrs = append(attrs, slog.String(kv[0], kv[1]))
		}
	}
	if len(e.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", e.Metadata))
	}

	s.log.LogAttrs(ctx, level, "security event", attrs...)
	return nil
}

func (s *SlogStorage) StoreBatch(ctx context.Context, events []Event) error {
	for _, e := range events {
		_ = s.Store(ctx, e)
	}
	return nil
}

package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PgDB is the subset of pgx used by PgStorage.
type PgDB interface {
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var eventColumns = []string{
	"id", "event_type", "severity", "service", "tenant_id", "requested_tenant",
	"actor_id", "credential_ref", "ip", "request_id", "metadata", "created_at",
}

// PgStorage persists events in the security_events table of the central database.
type PgStorage struct {
	db    PgDB
	table string
}

func NewPgStorage(db PgDB) *PgStorage {
	return &PgStorage{db: db, table: "security_events"}
}

func (s *PgStorage) Store(ctx context.Context, e Event) error {
	return s.StoreBatch(ctx, []Event{e})
}

// StoreBatch writes events with COPY.
func (s *PgStorage) StoreBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	_, err := s.db.CopyFrom(ctx, pgx.Identifier{s.table}, eventColumns,
		pgx.CopyFromSlice(len(events), func(i int) ([]any, error) {
			e := events[i]
			metadata := e.Metadata
			if metadata == nil {
				metadata = map[string]any{}
			}
			return []any{
				e.ID, e.Type, string(e.Severity), e.Service, e.TenantID, e.RequestedTenant,
				e.ActorID, e.CredentialRef, e.IP, e.RequestID, metadata, e.CreatedAt,
			}, nil
		}))
	if err != nil {
		return fmt.Errorf("store security events: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first. An empty tenantID lists all tenants.
func (s *PgStorage) Recent(ctx context.Context, tenantID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, event_type, severity, service, tenant_id, requested_tenant,
		       actor_id, credential_ref, ip, request_id, metadata, created_at
		FROM security_events
		WHERE $1 = '' OR tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("query security events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e        Event
			severity string
		)
		if err := rows.Scan(&e.ID, &e.Type, &severity, &e.Service, &e.TenantID, &e.RequestedTenant,
			&e.ActorID, &e.CredentialRef, &e.IP, &e.RequestID, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan security event: %w", err)
		}
		e.Severity = Severity(severity)
		out = append(out, e)
	}
	return out, rows.Err()
}

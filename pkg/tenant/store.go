package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/pg"
)

// DB is the subset of pgx used by Store; *pgxpool.Pool and pgx.Tx satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL tenant directory table. It implements Provider.
type Store struct {
	db  DB
	now func() time.Time
}

// NewStore creates a Store over the central directory database.
func NewStore(db DB) *Store {
	return &Store{db: db, now: time.Now}
}

const tenantColumns = `id, domain, name, is_active, created_at, updated_at`

func scanTenant(row pgx.Row) (*Tenant, error) {
	var t Tenant
	if err := row.Scan(&t.ID, &t.Domain, &t.Name, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return scanTenant(s.db.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id))
}

func (s *Store) GetByDomain(ctx context.Context, domain string) (*Tenant, error) {
	return scanTenant(s.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE domain = $1`, NormalizeDomain(domain)))
}

// List returns every tenant ordered by domain.
func (s *Store) List(ctx context.Context) ([]*Tenant, error) {
	rows, err := s.db.Query(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var out []*Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("list tenants: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Create inserts a new tenant record. The domain is normalized before storage.
func (s *Store) Create(ctx context.Context, t *Tenant) error {
	t.Domain = NormalizeDomain(t.Domain)
	if err := t.Validate(); err != nil {
		return err
	}
	now := s.now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	_, err := s.db.Exec(ctx,
		`INSERT INTO tenants (`+tenantColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Domain, t.Name, t.Active, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return errors.Join(ErrDomainTaken, err)
		}
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

// SetActive flips the activity flag and returns the updated record.
func (s *Store) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Tenant, error) {
	return scanTenant(s.db.QueryRow(ctx,
		`UPDATE tenants SET is_active = $2, updated_at = $3 WHERE id = $1 RETURNING `+tenantColumns,
		id, active, s.now().UTC()))
}

// UpdateDomain changes the tenant domain and returns the updated record.
func (s *Store) UpdateDomain(ctx context.Context, id uuid.UUID, domain string) (*Tenant, error) {
	domain = NormalizeDomain(domain)
	if !IsDomain(domain) {
		return nil, fmt.Errorf("%w: malformed domain %q", ErrInvalidTenant, domain)
	}
	t, err := scanTenant(s.db.QueryRow(ctx,
		`UPDATE tenants SET domain = $2, updated_at = $3 WHERE id = $1 RETURNING `+tenantColumns,
		id, domain, s.now().UTC()))
	if err != nil && pg.IsDuplicateKeyError(err) {
		return nil, errors.Join(ErrDomainTaken, err)
	}
	return t, err
}

// Delete removes the tenant record. Callers drop the tenant databases first.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

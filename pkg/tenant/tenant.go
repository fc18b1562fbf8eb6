package tenant

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Tenant represents one customer organization of the platform.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Domain    string    `json:"domain"`
	Name      string    `json:"name"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Slug returns the first label of the tenant domain ("acme" for "acme.example").
func (t *Tenant) Slug() string {
	label, _, _ := strings.Cut(t.Domain, ".")
	return label
}

// Validate checks the record before it is written to the directory.
func (t *Tenant) Validate() error {
	if t.ID == uuid.Nil {
		return fmt.Errorf("%w: empty id", ErrInvalidTenant)
	}
	if !IsDomain(NormalizeDomain(t.Domain)) {
		return fmt.Errorf("%w: malformed domain %q", ErrInvalidTenant, t.Domain)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTenant)
	}
	return nil
}

// Provider loads tenant records from the directory backing store.
// Both lookups return ErrTenantNotFound when nothing matches; inactive
// tenants are returned as-is so callers can check activity explicitly.
type Provider interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetByDomain(ctx context.Context, domain string) (*Tenant, error)
}

var (
	uuidPattern   = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	domainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)*$`)
)

// IsUUID reports whether identifier is a canonical 8-4-4-4-12 UUID.
func IsUUID(identifier string) bool {
	return uuidPattern.MatchString(identifier)
}

// IsDomain reports whether s is a normalized domain name.
func IsDomain(s string) bool {
	return len(s) <= 253 && domainPattern.MatchString(s)
}

// NormalizeDomain case-folds a domain and strips surrounding space and the
// trailing root dot, so "ACME.Example." and "acme.example" share a key.
func NormalizeDomain(domain string) string {
	domain = strings.TrimSuffix(strings.TrimSpace(domain), ".")
	// A Caser is stateful and must not be shared between goroutines.
	return cases.Fold().String(domain)
}

// Identifier is a parsed tenant identifier: exactly one of ID or Domain is set.
type Identifier struct {
	ID     uuid.UUID
	Domain string
}

// IsID reports whether the identifier names a tenant by UUID.
func (i Identifier) IsID() bool { return i.ID != uuid.Nil }

// Key is the normalized literal form used for cache keys.
func (i Identifier) Key() string {
	if i.IsID() {
		return i.ID.String()
	}
	return i.Domain
}

// ParseIdentifier classifies a raw identifier as a UUID or a domain.
// The decision is syntactic: a UUID-shaped value is never looked up as a domain.
func ParseIdentifier(raw string) (Identifier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identifier{}, ErrInvalidIdentifier
	}
	if IsUUID(raw) {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Identifier{}, fmt.Errorf("%w: %w", ErrInvalidIdentifier, err)
		}
		return Identifier{ID: id}, nil
	}
	domain := NormalizeDomain(raw)
	if !IsDomain(domain) {
		return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
	}
	return Identifier{Domain: domain}, nil
}

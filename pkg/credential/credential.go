package credential

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"

	"golang.org/x/crypto/blake2b"
)

var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrNoCredential      = errors.New("no credential presented")
	ErrMissingSigningKey = errors.New("missing signing key")
)

// Credential is the authenticated caller of a request. TenantID is empty for
// platform-level credentials.
type Credential struct {
	Subject  string `json:"sub"`
	TenantID string `json:"tenant_id,omitempty"`
	Role     string `json:"role,omitempty"`
	// Ref identifies the credential in logs and security events. It never
	// contains secret material.
	Ref string `json:"ref"`
}

// HasTenant reports whether the credential is bound to a tenant.
func (c *Credential) HasTenant() bool {
	return c != nil && c.TenantID != ""
}

// Resolver authenticates a request. It returns ErrNoCredential when the
// request carries none, and an error wrapping ErrInvalidCredential when the
// credential it carries is not acceptable.
type Resolver interface {
	Resolve(r *http.Request) (*Credential, error)
}

// Fingerprint derives a stable, non-reversible reference for a secret.
func Fingerprint(kind, secret string) string {
	sum := blake2b.Sum256([]byte(secret))
	return kind + ":" + hex.EncodeToString(sum[:8])
}

type contextKey struct{}

func WithCredential(ctx context.Context, c *Credential) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the credential stored by Middleware.
func FromContext(ctx context.Context) (*Credential, bool) {
	c, ok := ctx.Value(contextKey{}).(*Credential)
	return c, ok && c != nil
}

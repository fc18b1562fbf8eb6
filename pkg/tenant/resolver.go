package tenant

import (
	"net/http"
	"strings"
)

const (
	// DefaultHeader carries the explicit tenant identifier of a request.
	DefaultHeader = "X-Tenant-ID"
	// DefaultLegacyHeader carries the tenant domain under the older convention.
	DefaultLegacyHeader = "X-Tenant-Domain"
)

// Resolver extracts a raw tenant identifier from HTTP requests.
type Resolver interface {
	// Resolve returns the identifier found in the request, or "" when absent.
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(r *http.Request) (string, error)

func (f ResolverFunc) Resolve(r *http.Request) (string, error) {
	return f(r)
}

// NewHeaderResolver reads the identifier from a request header. The trimmed
// value is returned as sent, without checking its syntax: isolation rules
// compare the literal value, and a malformed value from a tenant-bound
// credential is a cross-tenant attempt rather than a bad request. Callers
// validate with ParseIdentifier once isolation has allowed the request.
func NewHeaderResolver(header string) Resolver {
	if header == "" {
		header = DefaultHeader
	}
	return ResolverFunc(func(r *http.Request) (string, error) {
		return strings.TrimSpace(r.Header.Get(header)), nil
	})
}

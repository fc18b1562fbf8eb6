package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no directory entry matches an identifier.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInactiveTenant is returned when routing is attempted for a deactivated tenant.
	ErrInactiveTenant = errors.New("tenant is inactive")

	// ErrInvalidIdentifier is returned when an identifier is neither a UUID nor a domain.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	ErrInvalidTenant = errors.New("invalid tenant record")
	ErrDomainTaken   = errors.New("tenant domain already taken")
)

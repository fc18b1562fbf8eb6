package tenantdb

import (
	"context"
	"errors"
	"sync"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenant"
)

// Handle is the scoped ownership of an active connection context. Release
// always switches the owning Switcher back to central; it is safe to call more
// than once and from a deferred function.
type Handle struct {
	switcher *Switcher
	tenant   *tenant.Tenant
	conn     Conn

	once       sync.Once
	releaseErr error
}

// Enter switches to the tenant named by identifier and returns the handle
// owning that context. On error the switcher is already back on central and
// no handle is returned.
func (s *Switcher) Enter(ctx context.Context, identifier string) (*Handle, error) {
	t, err := s.SwitchToTenant(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return &Handle{switcher: s, tenant: t, conn: s.activeConn()}, nil
}

// EnterCentral returns a handle on the verified central connection, for
// platform-level requests that are not bound to a tenant.
func (s *Switcher) EnterCentral(ctx context.Context) (*Handle, error) {
	if err := s.SwitchToCentral(ctx); err != nil {
		return nil, err
	}
	return &Handle{switcher: s, conn: s.activeConn()}, nil
}

// Tenant is the routed tenant, or nil for a central handle.
func (h *Handle) Tenant() *tenant.Tenant {
	return h.tenant
}

// Conn is the verified connection of the handle. It must not be used after Release.
func (h *Handle) Conn() Conn {
	return h.conn
}

// Database is the physical database the handle targets.
func (h *Handle) Database() string {
	return h.conn.Database()
}

// Release restores the central context.
func (h *Handle) Release(ctx context.Context) error {
	h.once.Do(func() {
		h.releaseErr = h.switcher.SwitchToCentral(ctx)
	})
	return h.releaseErr
}

// Run enters the tenant named by identifier, calls fn with the handle and
// releases it afterwards, also when fn returns an error or panics. A panic is
// propagated after the central context has been restored.
func (s *Switcher) Run(ctx context.Context, identifier string, fn func(ctx context.Context, h *Handle) error) error {
	h, err := s.Enter(ctx, identifier)
	if err != nil {
		return err
	}
	return runHandle(ctx, h, fn)
}

// RunCentral is Run for a central handle.
func (s *Switcher) RunCentral(ctx context.Context, fn func(ctx context.Context, h *Handle) error) error {
	h, err := s.EnterCentral(ctx)
	if err != nil {
		return err
	}
	return runHandle(ctx, h, fn)
}

func runHandle(ctx context.Context, h *Handle, fn func(ctx context.Context, h *Handle) error) (err error) {
	defer func() {
		if releaseErr := h.Release(ctx); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
	}()
	return fn(ctx, h)
}

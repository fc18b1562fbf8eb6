package tenancy

import (
	"context"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenantdb"
)

type handleKey struct{}

func WithHandle(ctx context.Context, h *tenantdb.Handle) context.Context {
	return context.WithValue(ctx, handleKey{}, h)
}

// HandleFromContext returns the connection handle of the current request.
func HandleFromContext(ctx context.Context) (*tenantdb.Handle, bool) {
	h, ok := ctx.Value(handleKey{}).(*tenantdb.Handle)
	return h, ok && h != nil
}

// ConnFromContext returns the verified connection of the current request.
func ConnFromContext(ctx context.Context) (tenantdb.Conn, bool) {
	h, ok := HandleFromContext(ctx)
	if !ok {
		return nil, false
	}
	return h.Conn(), true
}

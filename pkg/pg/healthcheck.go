package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Healthcheck pings the pool and, when database is not empty, checks that the
// pool still points at it. A readiness probe fails on a pool that answers
// from the wrong database.
func Healthcheck(pool *pgxpool.Pool, database string) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if database == "" {
			return nil
		}
		var current string
		if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&current); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if current != database {
			return fmt.Errorf("%w: connected to %q, want %q", ErrHealthcheckFailed, current, database)
		}
		return nil
	}
}

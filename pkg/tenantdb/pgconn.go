package tenantdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/pg"
)

// MaxConnsPerDatabase caps every pool a PgConnector opens. A worker serves
// one request at a time, so the engine sees at most workers x pool entries x
// MaxConnsPerDatabase connections per family.
const MaxConnsPerDatabase = 2

// PgConnector opens pgx pools against databases of one engine family. The
// database is swapped on the parsed DSN; host and credentials are kept.
type PgConnector struct {
	cfg pg.Config
}

func NewPgConnector(cfg pg.Config) *PgConnector {
	cfg = cfg.WithDefaults()
	cfg.MaxOpenConns = min(cfg.MaxOpenConns, MaxConnsPerDatabase)
	cfg.MaxIdleConns = min(cfg.MaxIdleConns, 1)
	// Tenant connections are not retried here; a failure ends the request.
	cfg.RetryAttempts = 1
	return &PgConnector{cfg: cfg}
}

// Config is the family config with the per-database caps applied.
func (c *PgConnector) Config() pg.Config {
	return c.cfg
}

// Open connects to database and pings it.
func (c *PgConnector) Open(ctx context.Context, database string) (Conn, error) {
	pool, err := pg.ConnectDatabase(ctx, c.cfg, database)
	if err != nil {
		return nil, err
	}
	return &pgConn{pool: pool, database: database}, nil
}

type pgConn struct {
	pool     *pgxpool.Pool
	database string
}

func (c *pgConn) Database() string { return c.database }

func (c *pgConn) Ping(ctx context.Context) error { return c.pool.Ping(ctx) }

func (c *pgConn) CurrentDatabase(ctx context.Context) (string, error) {
	var name string
	if err := c.pool.QueryRow(ctx, `SELECT current_database()`).Scan(&name); err != nil {
		return "", err
	}
	return name, nil
}

func (c *pgConn) Close() error {
	c.pool.Close()
	return nil
}

// PgxPool returns the pgx pool behind a connection opened by PgConnector.
func PgxPool(conn Conn) (*pgxpool.Pool, bool) {
	c, ok := conn.(*pgConn)
	if !ok {
		return nil, false
	}
	return c.pool, true
}

// Querier is the pgx subset used for catalog and provisioning statements.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgCatalog probes pg_database through a connection to the family's central database.
type PgCatalog struct {
	db Querier
}

func NewPgCatalog(db Querier) *PgCatalog {
	return &PgCatalog{db: db}
}

func (c *PgCatalog) DatabaseExists(ctx context.Context, database string) (bool, error) {
	var exists bool
	err := c.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, database).Scan(&exists)
	if err != nil {
		return false, errors.Join(errors.New("probe pg_database"), err)
	}
	return exists, nil
}

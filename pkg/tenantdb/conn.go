package tenantdb

import "context"

// Conn is a logical connection to one physical database.
type Conn interface {
	// Database is the database the connection was opened for.
	Database() string
	// Ping is the lightweight liveness probe.
	Ping(ctx context.Context) error
	// CurrentDatabase asks the engine which database the connection serves.
	CurrentDatabase(ctx context.Context) (string, error)
	Close() error
}

// Connector opens connections to databases of one engine family.
type Connector interface {
	Open(ctx context.Context, database string) (Conn, error)
}

// Catalog answers whether a physical database exists on the engine.
type Catalog interface {
	DatabaseExists(ctx context.Context, database string) (bool, error)
}

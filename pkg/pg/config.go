package pg

import "time"

// Config describes one engine family: the central database DSN plus the
// pool tuning applied to every pool opened against that engine.
type Config struct {
	ConnectionString  string        `env:"PG_CONN_URL,required" yaml:"dsn"`                                  // ConnectionString points at the central database of the family.
	MaxOpenConns      int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10" yaml:"max_open_conns"`          // MaxOpenConns is the maximum number of open connections per pool.
	MaxIdleConns      int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"1" yaml:"max_idle_conns"`           // MaxIdleConns is the number of connections kept warm per pool.
	HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m" yaml:"healthcheck_period"`  // HealthCheckPeriod is the period between background health checks.
	MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m" yaml:"max_conn_idle_time"` // MaxConnIdleTime is how long a connection may idle before it is closed.
	MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m" yaml:"max_conn_lifetime"`   // MaxConnLifetime is the maximum age of a connection.
	ConnectTimeout    time.Duration `env:"PG_CONNECT_TIMEOUT" envDefault:"10s" yaml:"connect_timeout"`       // ConnectTimeout bounds the driver dial.

	RetryAttempts int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3" yaml:"retry_attempts"`  // RetryAttempts is the number of attempts to open the central pool.
	RetryInterval time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s" yaml:"retry_interval"` // RetryInterval is the base interval between attempts.

	MigrationsTable string `env:"PG_MIGRATIONS_TABLE" envDefault:"schema_migrations" yaml:"-"` // MigrationsTable stores the applied migration version.
}

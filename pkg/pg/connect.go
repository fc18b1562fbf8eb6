package pg

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// WithDefaults fills zero-valued tuning fields with the documented defaults.
// Config loaded from env already has them; YAML-loaded config may not.
func (c Config) WithDefaults() Config {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 10
	}
	if c.MaxIdleConns < 0 {
		c.MaxIdleConns = 0
	}
	if c.HealthCheckPeriod <= 0 {
		c.HealthCheckPeriod = time.Minute
	}
	if c.MaxConnIdleTime <= 0 {
		c.MaxConnIdleTime = 10 * time.Minute
	}
	if c.MaxConnLifetime <= 0 {
		c.MaxConnLifetime = 30 * time.Minute
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 1
	}
	return c
}

// PoolConfig parses cfg into a pgxpool config. A non-empty database replaces
// the database named in the DSN; every other connection parameter is kept.
func PoolConfig(cfg Config, database string) (*pgxpool.Config, error) {
	if cfg.ConnectionString == "" {
		return nil, ErrEmptyConnectionString
	}
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	if database != "" {
		poolConfig.ConnConfig.Database = database
	}
	poolConfig.MaxConns = cfg.MaxOpenConns
	poolConfig.MinConns = min(cfg.MaxIdleConns, cfg.MaxOpenConns)
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	if cfg.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	return poolConfig, nil
}

// DatabaseName returns the database named in the DSN of cfg.
func DatabaseName(cfg Config) (string, error) {
	poolConfig, err := PoolConfig(cfg, "")
	if err != nil {
		return "", err
	}
	return poolConfig.ConnConfig.Database, nil
}

// Connect opens the pool of the database named by the DSN of cfg.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	return ConnectDatabase(ctx, cfg, "")
}

// ConnectDatabase opens a pool against database on the engine described by cfg,
// retrying with linear backoff. The pool is returned only after a successful ping.
func ConnectDatabase(ctx context.Context, cfg Config, database string) (*pgxpool.Pool, error) {
	poolConfig, err := PoolConfig(cfg, database)
	if err != nil {
		return nil, err
	}

	attempts := max(cfg.RetryAttempts, 1)
	var lastErr error
	for i := range attempts {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrFailedToOpenDBConnection, ctx.Err(), lastErr)
			case <-time.After(time.Duration(i) * cfg.RetryInterval):
			}
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			lastErr = err
			continue
		}
		// Ping catches authentication and missing-database errors that lazy pool creation hides.
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			lastErr = err
			continue
		}
		return pool, nil
	}

	return nil, errors.Join(ErrFailedToOpenDBConnection, lastErr)
}

// Redact hides the password of a URL-style DSN so it can be logged.
func Redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

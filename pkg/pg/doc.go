// Package pg bootstraps PostgreSQL access on top of pgx/v5: env-driven
// configuration, pool creation with retry, health checks, goose migrations
// and helpers that classify driver errors.
//
// A Config describes one engine family. Connect opens the pool of the
// database named in its DSN; ConnectDatabase opens a pool against any other
// database on the same engine with the same credentials and tuning, which is
// how per-tenant databases are reached:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	central, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.MigrateFS(ctx, central, migrations.FS, cfg, logger); err != nil {
//		return err
//	}
//
//	tenantPool, err := pg.ConnectDatabase(ctx, cfg, "tenant_..._employee")
//
// Never log a DSN as-is; use Redact.
package pg

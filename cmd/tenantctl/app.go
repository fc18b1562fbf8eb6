package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/audit"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/config"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/logger"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/pg"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/redis"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenancy"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenant"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenantdb"
)

type ctlConfig struct {
	Log          logger.Config
	Postgres     pg.Config
	Redis        redis.Config
	Directory    tenant.Config
	FamiliesFile string `env:"TENANTDB_FAMILIES_FILE"`
}

// app opens resources on first use so each command only needs the
// configuration it touches.
type app struct {
	log     *slog.Logger
	cfg     *ctlConfig
	central *pgxpool.Pool
	rdb     *goredis.Client
	family  map[tenantdb.Service]*pgxpool.Pool
	closers []func()
}

func newApp() *app {
	return &app{family: map[tenantdb.Service]*pgxpool.Pool{}}
}

func (a *app) config() (*ctlConfig, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	var cfg ctlConfig
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	a.cfg = &cfg
	a.log = logger.New(
		logger.WithConfig(cfg.Log, "tenantctl"),
		logger.WithFormat(logger.FormatText),
		logger.WithOutput(os.Stderr),
	)
	return a.cfg, nil
}

func (a *app) centralPool(ctx context.Context) (*pgxpool.Pool, error) {
	if a.central != nil {
		return a.central, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("connect directory database %s: %w", pg.Redact(cfg.Postgres.ConnectionString), err)
	}
	a.central = pool
	a.closers = append(a.closers, pool.Close)
	return pool, nil
}

// directory is the shared-cache view of the tenant directory, used to
// invalidate entries seen by the routers.
func (a *app) directory(ctx context.Context) (*tenant.Store, *tenant.Directory, error) {
	central, err := a.centralPool(ctx)
	if err != nil {
		return nil, nil, err
	}
	store := tenant.NewStore(central)
	if a.rdb == nil {
		rdb, err := redis.Connect(ctx, a.cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		a.rdb = rdb
		a.closers = append(a.closers, func() { _ = rdb.Close() })
	}
	dir := tenant.NewDirectory(store,
		tenant.WithCache(tenant.NewRedisCache(a.rdb, a.cfg.Directory.RedisPrefix, a.log)),
		tenant.WithCacheTTL(a.cfg.Directory.CacheTTL),
		tenant.WithLogger(a.log),
	)
	return store, dir, nil
}

func (a *app) families() (tenantdb.Families, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	if cfg.FamiliesFile == "" {
		return nil, errors.New("TENANTDB_FAMILIES_FILE is not set")
	}
	families, err := tenantdb.LoadFamilies(cfg.FamiliesFile)
	if err != nil {
		return nil, err
	}
	if err := families.Require(); err != nil {
		return nil, err
	}
	return families, nil
}

// familyPools connects to the central database of every service family.
func (a *app) familyPools(ctx context.Context) (tenantdb.Families, map[tenantdb.Service]*pgxpool.Pool, error) {
	families, err := a.families()
	if err != nil {
		return nil, nil, err
	}
	for _, s := range tenantdb.Services() {
		if _, ok := a.family[s]; ok {
			continue
		}
		pool, err := pg.Connect(ctx, families[s])
		if err != nil {
			return nil, nil, fmt.Errorf("connect %s family %s: %w", s, pg.Redact(families[s].ConnectionString), err)
		}
		a.family[s] = pool
		a.closers = append(a.closers, pool.Close)
	}
	return families, a.family, nil
}

// lifecycle builds the tenant lifecycle. Without databases it can only
// change records: activity changes and renames need no family connection.
func (a *app) lifecycle(ctx context.Context, databases bool) (*tenancy.Lifecycle, error) {
	store, dir, err := a.directory(ctx)
	if err != nil {
		return nil, err
	}
	var provisioner tenancy.DatabaseProvisioner
	if databases {
		_, pools, err := a.familyPools(ctx)
		if err != nil {
			return nil, err
		}
		execs := make(map[tenantdb.Service]tenantdb.Executor, len(pools))
		for s, p := range pools {
			execs[s] = p
		}
		provisioner = tenantdb.NewProvisioner(execs, a.log)
	}
	recorder := audit.NewRecorder(audit.NewPgStorage(a.central), audit.WithService("tenantctl"))
	return tenancy.NewLifecycle(store, dir, provisioner,
		tenancy.WithLifecycleLogger(a.log),
		tenancy.WithRecorder(recorder),
	), nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

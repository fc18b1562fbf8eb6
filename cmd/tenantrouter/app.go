package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Tech-Scrappers/hrms-shared-contracts/migrations"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/audit"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/clientip"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/config"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/credential"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/httpserver"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/isolation"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/logger"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/pg"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/redis"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/requestid"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenancy"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenant"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenantdb"
)

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if err := cfg.TenantDB.Validate(); err != nil {
		return err
	}
	service := cfg.TenantDB.Service

	log := logger.New(
		logger.WithConfig(cfg.Log, "tenantrouter"),
		logger.WithAttr(slog.String("family", service.String())),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
			clientip.LoggerExtractor(),
		),
	)
	slog.SetDefault(log)

	central, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connect central database: %w", err)
	}
	defer central.Close()
	if err := pg.MigrateFS(ctx, central, migrations.FS, cfg.Postgres, log); err != nil {
		return err
	}
	centralDB, err := pg.DatabaseName(cfg.Postgres)
	if err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	l1, err := tenant.NewRistrettoCache(cfg.Directory.L1Size)
	if err != nil {
		return err
	}
	directory := tenant.NewDirectory(tenant.NewStore(central),
		tenant.WithCache(tenant.NewTieredCache(l1,
			tenant.NewRedisCache(rdb, cfg.Directory.RedisPrefix, log), cfg.Directory.L1TTL)),
		tenant.WithCacheTTL(cfg.Directory.CacheTTL),
		tenant.WithLogger(log),
	)

	reg := newRegistry()
	dbMetrics := tenantdb.NewMetrics(reg)

	events := audit.NewAsyncWriter(audit.NewPgStorage(central), log, audit.AsyncOptions{})
	recorder := audit.NewRecorder(
		audit.MultiStorage{audit.NewSlogStorage(log), events},
		audit.WithService(service.String()),
		audit.WithRequestIDExtractor(requestid.FromContext),
		audit.WithIPExtractor(clientip.FromContext),
	)
	guard := isolation.NewGuard(directory, recorder,
		isolation.WithLogger(log),
		isolation.WithMetrics(isolation.NewMetrics(reg)),
	)

	connector := tenantdb.NewPgConnector(cfg.Postgres)
	catalog := tenantdb.NewPgCatalog(central)
	workers, err := tenantdb.NewWorkers(cfg.TenantDB.Workers, func(i int) (*tenantdb.Switcher, error) {
		wlog := log.With(slog.Int("worker", i))
		pool := tenantdb.NewPool(connector, centralDB,
			tenantdb.WithPoolService(service),
			tenantdb.WithPoolLogger(wlog),
			tenantdb.WithPoolMetrics(dbMetrics),
			tenantdb.WithPoolTimeout(cfg.TenantDB.OperationTimeout),
		)
		return tenantdb.NewSwitcher(service, directory, catalog, pool,
			tenantdb.WithLogger(wlog),
			tenantdb.WithMetrics(dbMetrics),
			tenantdb.WithOperationTimeout(cfg.TenantDB.OperationTimeout),
		), nil
	}, dbMetrics)
	if err != nil {
		return err
	}

	jwtResolver, err := credential.NewJWTResolverFromConfig(cfg.Auth)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(log, 5*time.Second, map[string]httpserver.Check{
		"postgres": pg.Healthcheck(central, centralDB),
		"redis":    redis.Healthcheck(rdb),
	}))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Handle("/internal/connections", tenancy.InfoHandler(workers))

	r.Group(func(r chi.Router) {
		r.Use(credential.Middleware(jwtResolver, log))
		r.Use(tenancy.Middleware(workers, guard, tenancy.WithLogger(log)))
		r.Get("/v1/context", contextHandler(log))
	})

	srv := httpserver.New(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithShutdownHook(
			workers.Close,
			events.Close,
			func(context.Context) error { return directory.Close() },
			func(context.Context) error { return rdb.Close() },
		),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tenantdb.NewSweeper(workers, cfg.TenantDB.SweepInterval, cfg.TenantDB.IdleThreshold, log).Run(gctx)
	})
	g.Go(func() error {
		return srv.Run(gctx, r)
	})
	return g.Wait()
}

type contextResponse struct {
	TenantID string `json:"tenant_id,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Database string `json:"database"`
}

// contextHandler reports where the request was routed, asking the engine
// rather than trusting the handle.
func contextHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		conn, ok := tenancy.ConnFromContext(ctx)
		if !ok {
			tenancy.DefaultErrorHandler(w, r, errors.New("no routed connection"))
			return
		}
		database, err := conn.CurrentDatabase(ctx)
		if err != nil {
			log.ErrorContext(ctx, "current database query failed", logger.Error(err))
			tenancy.DefaultErrorHandler(w, r, errors.Join(tenantdb.ErrConnectionUnavailable, err))
			return
		}

		resp := contextResponse{Database: database}
		if t, ok := tenant.FromContext(ctx); ok {
			resp.TenantID = t.ID.String()
			resp.Domain = t.Domain
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

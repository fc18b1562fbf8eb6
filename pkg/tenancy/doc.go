// Package tenancy binds requests to tenant databases.
//
// Middleware composes the credential, the isolation guard and the connection
// workers into one scoped operation per request:
//
//	workers, _ := tenantdb.NewWorkers(cfg.Workers, factory, metrics)
//	guard := isolation.NewGuard(directory, recorder)
//
//	r := chi.NewRouter()
//	r.Use(credential.Middleware(jwtResolver, log))
//	r.Use(tenancy.Middleware(workers, guard, tenancy.WithLogger(log)))
//	r.Get("/employees", func(w http.ResponseWriter, r *http.Request) {
//		conn, _ := tenancy.ConnFromContext(r.Context())
//		pool, _ := tenantdb.PgxPool(conn)
//		// query the tenant database
//	})
//
// Errors are answered through HTTPStatus and Code, which give every error
// kind a stable status and name.
//
// Lifecycle provisions, renames and removes tenants while keeping the
// directory cache and the physical databases in step with the record.
package tenancy

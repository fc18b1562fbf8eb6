// Package httpserver runs an HTTP server with graceful shutdown.
//
// Run blocks until the context is cancelled (wire it to signal.NotifyContext),
// drains in-flight requests and then runs shutdown hooks, which is where the
// tenant connection workers and the central pool are closed:
//
//	srv := httpserver.New(cfg,
//		httpserver.WithLogger(log),
//		httpserver.WithShutdownHook(func(ctx context.Context) error { return workers.Close() }),
//	)
//	err := srv.Run(ctx, router)
//
// LivenessHandler and ReadinessHandler provide the probe endpoints.
package httpserver

// Package logger builds the process slog.Logger.
//
// Loggers are JSON by default and can be switched to text for local runs.
// Context extractors registered with WithContextExtractors are evaluated for
// every record, which is how request ids, client addresses and the routed
// tenant end up on each log line without threading them by hand:
//
//	log := logger.New(
//		logger.WithConfig(cfg, "employee"),
//		logger.WithContextExtractors(
//			requestid.LoggerExtractor(),
//			clientip.LoggerExtractor(),
//			tenant.LoggerExtractor(),
//		),
//	)
//
// Attribute helpers (TenantID, Service, Database, PoolKey, Error) keep key
// names consistent across packages.
package logger

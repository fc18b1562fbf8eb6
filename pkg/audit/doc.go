// Package audit records security events such as denied cross-tenant access.
//
// A Recorder fills request-scoped fields (request id, client address) from
// context and passes each event to a Storage:
//
//	pgStore := audit.NewPgStorage(central)
//	async := audit.NewAsyncWriter(pgStore, log, audit.AsyncOptions{})
//	rec := audit.NewRecorder(audit.MultiStorage{audit.NewSlogStorage(log), async},
//		audit.WithService("employee"),
//		audit.WithRequestIDExtractor(requestid.FromContext),
//		audit.WithIPExtractor(clientip.FromContext),
//	)
//	_ = rec.Record(ctx, "tenant.cross_access_denied", audit.SeverityHigh,
//		audit.WithTenant(credTenant), audit.WithRequestedTenant(requested))
//
// Events carry a credential reference, never a credential secret.
package audit

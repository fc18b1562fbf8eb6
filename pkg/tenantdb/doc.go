// Package tenantdb routes a worker's data operations to the database of one
// tenant and back to the central database.
//
// Every tenant has one database per service, named by PhysicalName:
//
//	tenantdb.PhysicalName(id, tenantdb.ServiceEmployee)
//	// tenant_11111111_1111_1111_1111_111111111111_employee
//
// A Switcher owns one active connection context, which is central before the
// first switch and after every release. SwitchToTenant resolves the tenant
// without cache, requires it to be active, checks that its database exists,
// acquires a pooled connection and verifies with current_database() that the
// connection really serves that database. Any failure leaves the switcher on
// central.
//
// Callers should not pair SwitchToTenant and SwitchToCentral by hand. Run (or
// Enter with a deferred Release) guarantees the return to central on success,
// error and panic:
//
//	err := workers.Do(ctx, tenantID, func(ctx context.Context, h *tenantdb.Handle) error {
//		pool, _ := tenantdb.PgxPool(h.Conn())
//		return listEmployees(ctx, pool)
//	})
//
// Workers gives each request exclusive use of one Switcher. Pools are private
// to their worker; only the engine's connection limit bounds how many workers
// hold the same tenant database open.
package tenantdb

// Package isolation gates every tenant switch on the caller's credential.
//
// A request authenticated for tenant A may only be routed to tenant A, named
// by its exact id in the tenant header. Anything else is denied before any
// database is touched and, for a mismatch, recorded as a high severity
// security event carrying both tenant ids, the client address and the
// credential reference.
package isolation

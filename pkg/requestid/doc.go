// Package requestid propagates a per-request correlation id through the
// X-Request-ID header, the request context and log records.
package requestid

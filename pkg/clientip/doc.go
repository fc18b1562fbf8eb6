// Package clientip resolves the originating client address of a request.
//
// Security events raised by tenant isolation carry this address, so the
// headers trusted for it are configurable: only headers set by the platform
// gateway should be trusted. Invalid header values are skipped and the TCP
// peer address is the last resort.
//
//	ips := clientip.New("X-Forwarded-For")
//	r.Use(ips.Middleware)
//	ip := clientip.FromContext(ctx)
package clientip

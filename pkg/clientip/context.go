package clientip

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey struct{}

// WithIP stores the client address in the context.
func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

// FromContext returns the client address stored by Middleware, or "".
func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKey{}).(string)
	return ip
}

// Middleware stores the client address of each request in its context.
func (e *Extractor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithIP(r.Context(), e.IP(r))))
	})
}

// Middleware is Extractor.Middleware with DefaultHeaders.
func Middleware(next http.Handler) http.Handler {
	return defaultExtractor.Middleware(next)
}

// LoggerExtractor returns a logger context extractor for the client address.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if ip := FromContext(ctx); ip != "" {
			return slog.String("client_ip", ip), true
		}
		return slog.Attr{}, false
	}
}

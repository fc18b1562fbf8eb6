package credential

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/logger"
)

// Middleware authenticates requests with resolver and stores the credential
// in the request context. Requests without a credential pass through without
// one; rejecting them is left to the routes that need a caller. An invalid
// credential is answered with 401.
func Middleware(resolver Resolver, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Discard()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred, err := resolver.Resolve(r)
			switch {
			case errors.Is(err, ErrNoCredential):
				next.ServeHTTP(w, r)
				return
			case err != nil:
				log.InfoContext(r.Context(), "credential rejected", logger.Error(err))
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"code":  "invalid_credential",
					"error": "invalid credential",
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCredential(r.Context(), cred)))
		})
	}
}

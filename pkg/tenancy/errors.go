package tenancy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/isolation"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenant"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenantdb"
)

var ErrUnauthenticated = errors.New("request is not authenticated")

// ErrorHandler writes the response for a request the middleware refused.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type kind struct {
	target error
	status int
	code   string
}

// The first match wins; joined errors may match several kinds.
var kinds = []kind{
	{ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{isolation.ErrMissingTenantIdentifier, http.StatusBadRequest, "missing_tenant_identifier"},
	{tenant.ErrInvalidIdentifier, http.StatusBadRequest, "invalid_tenant_identifier"},
	{isolation.ErrCrossTenantAccess, http.StatusForbidden, "cross_tenant_access_denied"},
	{tenant.ErrInactiveTenant, http.StatusForbidden, "tenant_inactive"},
	{tenant.ErrTenantNotFound, http.StatusNotFound, "tenant_not_found"},
	{tenantdb.ErrDatabaseNotProvisioned, http.StatusInternalServerError, "database_not_provisioned"},
	{tenantdb.ErrConnectionVerificationFailed, http.StatusInternalServerError, "connection_verification_failed"},
	{tenantdb.ErrConnectionUnavailable, http.StatusInternalServerError, "connection_unavailable"},
	{tenantdb.ErrWorkersClosed, http.StatusServiceUnavailable, "shutting_down"},
	{context.DeadlineExceeded, http.StatusServiceUnavailable, "timeout"},
}

func lookup(err error) (int, string) {
	for _, k := range kinds {
		if errors.Is(err, k.target) {
			return k.status, k.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// HTTPStatus maps an error of the routing layer to a response status. Caller
// mistakes map to 4xx; infrastructure inconsistencies map to 5xx.
func HTTPStatus(err error) int {
	status, _ := lookup(err)
	return status
}

// Code is the stable machine-readable name of the error kind.
func Code(err error) string {
	_, code := lookup(err)
	return code
}

type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// DefaultErrorHandler writes {code, error} as JSON. Server errors are reported
// without their cause, which may name physical databases.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	status, code := lookup(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Code: code, Error: msg})
}

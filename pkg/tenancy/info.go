package tenancy

import (
	"encoding/json"
	"net/http"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenantdb"
)

// InfoSource reports per-worker connection contexts. *tenantdb.Workers implements it.
type InfoSource interface {
	Info() []tenantdb.ConnectionInfo
}

type infoResponse struct {
	Workers []tenantdb.ConnectionInfo `json:"workers"`
}

// InfoHandler serves the current connection context of every worker.
func InfoHandler(src InfoSource) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(infoResponse{Workers: src.Info()})
	})
}

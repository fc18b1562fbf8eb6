package tenantdb

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CentralKey is the pool key of the central connection.
const CentralKey = "central"

// PhysicalName returns the database of tenantID for service:
//
//	tenant_{uuid with "-" replaced by "_"}_{service}
//
// Existing databases were created under this name; it must not change.
// PhysicalName panics on an invalid service.
func PhysicalName(tenantID uuid.UUID, service Service) string {
	if !service.Valid() {
		panic(fmt.Sprintf("tenantdb: physical name for invalid service %s", service))
	}
	return "tenant_" + strings.ReplaceAll(tenantID.String(), "-", "_") + "_" + serviceNames[service]
}

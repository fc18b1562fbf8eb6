package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// DefaultHeaders are consulted in order before falling back to RemoteAddr.
// The platform gateway sets X-Forwarded-For; X-Real-IP covers direct nginx setups.
var DefaultHeaders = []string{"X-Forwarded-For", "X-Real-IP"}

// Extractor resolves the originating client address of a request.
type Extractor struct {
	headers []string
}

// New creates an Extractor trusting the given headers in order.
// With no headers it trusts DefaultHeaders. Pass a single empty string to
// trust only the TCP peer address.
func New(headers ...string) *Extractor {
	if len(headers) == 0 {
		headers = DefaultHeaders
	}
	clean := make([]string, 0, len(headers))
	for _, h := range headers {
		if h = strings.TrimSpace(h); h != "" {
			clean = append(clean, http.CanonicalHeaderKey(h))
		}
	}
	return &Extractor{headers: clean}
}

// IP returns the normalized client address or "" when none is valid.
// For comma-separated headers the first valid entry wins.
func (e *Extractor) IP(r *http.Request) string {
	for _, h := range e.headers {
		value := r.Header.Get(h)
		if value == "" {
			continue
		}
		for part := range strings.SplitSeq(value, ",") {
			if ip := parseIP(part); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// GetIP resolves the client address with DefaultHeaders.
func GetIP(r *http.Request) string {
	return defaultExtractor.IP(r)
}

var defaultExtractor = New()

func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return ""
	}
	// IPv4-mapped IPv6 is reported as plain IPv4 so audit records compare equal.
	return addr.Unmap().WithZone("").String()
}

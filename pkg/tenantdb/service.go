package tenantdb

import (
	"fmt"
	"strings"
)

// Service is one deployable unit of the platform. Each service owns its own
// database engine and one database per tenant. The zero value is invalid.
type Service uint8

const (
	serviceInvalid Service = iota
	ServiceIdentity
	ServiceEmployee
	ServiceCore
)

var serviceNames = [...]string{
	serviceInvalid:  "",
	ServiceIdentity: "identity",
	ServiceEmployee: "employee",
	ServiceCore:     "core",
}

// Services lists every known service in a stable order.
func Services() []Service {
	return []Service{ServiceIdentity, ServiceEmployee, ServiceCore}
}

// Valid reports whether s is one of the known services.
func (s Service) Valid() bool {
	return s > serviceInvalid && int(s) < len(serviceNames)
}

func (s Service) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Service(%d)", uint8(s))
	}
	return serviceNames[s]
}

// ParseService maps a service name to its Service, ignoring case and
// surrounding whitespace.
func ParseService(name string) (Service, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range Services() {
		if serviceNames[s] == name {
			return s, nil
		}
	}
	return serviceInvalid, fmt.Errorf("%w: %q", ErrUnknownService, name)
}

func (s Service) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownService, uint8(s))
	}
	return []byte(serviceNames[s]), nil
}

func (s *Service) UnmarshalText(text []byte) error {
	parsed, err := ParseService(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

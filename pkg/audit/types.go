package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Severity ranks security events for alerting.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Event is a persisted security event. CredentialRef identifies the
// credential (key id or fingerprint); raw secrets never reach an Event.
type Event struct {
	ID              uuid.UUID      `json:"id"`
	Type            string         `json:"type"`
	Severity        Severity       `json:"severity"`
	Service         string         `json:"service,omitempty"`
	TenantID        string         `json:"tenant_id,omitempty"`
	RequestedTenant string         `json:"requested_tenant,omitempty"`
	ActorID         string         `json:"actor_id,omitempty"`
	CredentialRef   string         `json:"credential_ref,omitempty"`
	IP              string         `json:"ip,omitempty"`
	RequestID       string         `json:"request_id,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (e *Event) Validate() error {
	if e.Type == "" {
		return fmt.Errorf("%w: type is required", ErrInvalidEvent)
	}
	if !e.Severity.Valid() {
		return fmt.Errorf("%w: unknown severity %q", ErrInvalidEvent, e.Severity)
	}
	return nil
}

// EventOption sets optional event fields.
type EventOption func(*Event)

// WithTenant sets the tenant the actor is bound to.
func WithTenant(id string) EventOption {
	return func(e *Event) { e.TenantID = id }
}

// WithRequestedTenant sets the tenant the request tried to reach.
func WithRequestedTenant(identifier string) EventOption {
	return func(e *Event) { e.RequestedTenant = identifier }
}

func WithActor(id string) EventOption {
	return func(e *Event) { e.ActorID = id }
}

func WithCredentialRef(ref string) EventOption {
	return func(e *Event) { e.CredentialRef = ref }
}

// WithRequestID overrides the request id taken from context.
func WithRequestID(id string) EventOption {
	return func(e *Event) {
		if id != "" {
			e.RequestID = id
		}
	}
}

// WithIP overrides the client address taken from context.
func WithIP(ip string) EventOption {
	return func(e *Event) {
		if ip != "" {
			e.IP = ip
		}
	}
}

func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}

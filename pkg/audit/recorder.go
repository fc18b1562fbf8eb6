package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage persists security events.
type Storage interface {
	Store(ctx context.Context, event Event) error
}

// BatchStorage persists many events in one round trip.
type BatchStorage interface {
	StoreBatch(ctx context.Context, events []Event) error
}

type contextExtractor func(context.Context) string

// Recorder builds events from request context and hands them to a Storage.
type Recorder struct {
	storage            Storage
	service            string
	requestIDExtractor contextExtractor
	ipExtractor        contextExtractor
	now                func() time.Time
}

type Option func(*Recorder)

// WithService stamps every event with the emitting service family.
func WithService(name string) Option {
	return func(r *Recorder) { r.service = name }
}

func WithRequestIDExtractor(fn func(context.Context) string) Option {
	return func(r *Recorder) { r.requestIDExtractor = fn }
}

func WithIPExtractor(fn func(context.Context) string) Option {
	return func(r *Recorder) { r.ipExtractor = fn }
}

func withClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

func NewRecorder(storage Storage, opts ...Option) *Recorder {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	r := &Recorder{storage: storage, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record stores an event of the given type and severity.
func (r *Recorder) Record(ctx context.Context, eventType string, severity Severity, opts ...EventOption) error {
	event := Event{
		ID:        uuid.New(),
		Type:      eventType,
		Severity:  severity,
		Service:   r.service,
		CreatedAt: r.now().UTC(),
	}
	if r.requestIDExtractor != nil {
		event.RequestID = r.requestIDExtractor(ctx)
	}
	if r.ipExtractor != nil {
		event.IP = r.ipExtractor(ctx)
	}
	for _, opt := range opts {
		opt(&event)
	}
	if err := event.Validate(); err != nil {
		return err
	}
	return r.storage.Store(ctx, event)
}

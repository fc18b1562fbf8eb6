package audit

import (
	"context"
	"errors"
	"sync"
)

// MultiStorage writes each event to every storage and joins their errors.
type MultiStorage []Storage

func (m MultiStorage) Store(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Store(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MemoryStorage keeps events in memory. It backs tests and local runs.
type MemoryStorage struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Store(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *MemoryStorage) StoreBatch(ctx context.Context, events []Event) error {
	for _, e := range events {
		_ = m.Store(ctx, e)
	}
	return nil
}

// Events returns a copy of the stored events.
func (m *MemoryStorage) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

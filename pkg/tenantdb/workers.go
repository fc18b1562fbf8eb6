package tenantdb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Workers is a fixed set of Switchers, each with a private pool and active
// context. A request checks out one worker for exclusive use, so no two
// switches interleave on the same context. The same tenant database may be
// open in several workers at once; the engine's connection limit must cover
// workers × pool size.
type Workers struct {
	all     []*Switcher
	idle    chan *Switcher
	done    chan struct{}
	metrics *Metrics

	mu     sync.Mutex
	closed bool
}

// NewWorkers builds n switchers with factory. Each call of factory must return
// a Switcher with its own Pool.
func NewWorkers(n int, factory func(i int) (*Switcher, error), metrics *Metrics) (*Workers, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: worker count must be positive, got %d", ErrInvalidConfig, n)
	}
	w := &Workers{
		all:     make([]*Switcher, 0, n),
		idle:    make(chan *Switcher, n),
		done:    make(chan struct{}),
		metrics: metrics,
	}
	for i := range n {
		s, err := factory(i)
		if err != nil {
			_ = w.closeAll()
			return nil, fmt.Errorf("create worker %d: %w", i, err)
		}
		w.all = append(w.all, s)
		w.idle <- s
	}
	return w, nil
}

// Len is the number of workers.
func (w *Workers) Len() int {
	return len(w.all)
}

// Checkout blocks until a worker is free or ctx is done.
func (w *Workers) Checkout(ctx context.Context) (*Switcher, error) {
	select {
	case <-w.done:
		return nil, ErrWorkersClosed
	default:
	}
	select {
	case s := <-w.idle:
		w.metrics.workerBusy(1)
		return s, nil
	case <-w.done:
		return nil, ErrWorkersClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Return hands a checked out worker back.
func (w *Workers) Return(s *Switcher) {
	w.metrics.workerBusy(-1)
	w.idle <- s
}

// Do checks out a worker, runs fn inside the tenant context named by
// identifier and returns the worker, which is back on central by then.
func (w *Workers) Do(ctx context.Context, identifier string, fn func(ctx context.Context, h *Handle) error) error {
	s, err := w.Checkout(ctx)
	if err != nil {
		return err
	}
	defer w.Return(s)
	return s.Run(ctx, identifier, fn)
}

// DoCentral is Do on the central connection.
func (w *Workers) DoCentral(ctx context.Context, fn func(ctx context.Context, h *Handle) error) error {
	s, err := w.Checkout(ctx)
	if err != nil {
		return err
	}
	defer w.Return(s)
	return s.RunCentral(ctx, fn)
}

// Sweep evicts idle tenant connections from every worker that is not serving
// a request right now and returns the number evicted.
func (w *Workers) Sweep(maxIdle time.Duration) int {
	var taken []*Switcher
collect:
	for range len(w.all) {
		select {
		case s := <-w.idle:
			taken = append(taken, s)
		default:
			break collect
		}
	}

	evicted := 0
	for _, s := range taken {
		evicted += s.Sweep(maxIdle)
		w.idle <- s
	}
	return evicted
}

// Info reports the connection context of every worker.
func (w *Workers) Info() []ConnectionInfo {
	out := make([]ConnectionInfo, 0, len(w.all))
	for _, s := range w.all {
		out = append(out, s.ConnectionInfo())
	}
	return out
}

// Close waits for checked out workers to come back, bounded by ctx, and
// closes every pool.
func (w *Workers) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	var errs []error
wait:
	for range len(w.all) {
		select {
		case <-w.idle:
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("waiting for busy workers: %w", ctx.Err()))
			break wait
		}
	}
	return errors.Join(append(errs, w.closeAll())...)
}

func (w *Workers) closeAll() error {
	var errs []error
	for _, s := range w.all {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

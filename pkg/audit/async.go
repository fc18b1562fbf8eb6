package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/logger"
)

type AsyncOptions struct {
	BufferSize     int           // Max events queued before Store falls back to a synchronous write.
	BatchSize      int           // Events per batch.
	BatchTimeout   time.Duration // Max wait for a partial batch.
	StorageTimeout time.Duration // Per-batch storage timeout.
}

// AsyncWriter queues events and writes them in batches from one goroutine,
// keeping storage latency off the request path. Store never drops an event:
// when the queue is full the event is written synchronously.
type AsyncWriter struct {
	storage BatchStorage
	log     *slog.Logger
	events  chan Event
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	opts    AsyncOptions
}

func NewAsyncWriter(storage BatchStorage, log *slog.Logger, opts AsyncOptions) *AsyncWriter {
	if storage == nil {
		panic("audit: batch storage cannot be nil")
	}
	if log == nil {
		log = logger.Discard()
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.BatchTimeout <= 0 {
		opts.BatchTimeout = 100 * time.Millisecond
	}
	if opts.StorageTimeout <= 0 {
		opts.StorageTimeout = 5 * time.Second
	}

	w := &AsyncWriter{
		storage: storage,
		log:     log,
		events:  make(chan Event, opts.BufferSize),
		done:    make(chan struct{}),
		opts:    opts,
	}
	w.wg.Add(1)
	go w.worker()
	return w
}

func (w *AsyncWriter) Store(ctx context.Context, e Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrWriterClosed
	}

	select {
	case w.events <- e:
		return nil
	default:
		return w.storage.StoreBatch(ctx, []Event{e})
	}
}

func (w *AsyncWriter) worker() {
	defer w.wg.Done()

	batch := make([]Event, 0, w.opts.BatchSize)
	ticker := time.NewTicker(w.opts.BatchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), w.opts.StorageTimeout)
		defer cancel()
		if err := w.storage.StoreBatch(ctx, batch); err != nil {
			w.log.Error("security event batch write failed",
				slog.Int("events", len(batch)), logger.Error(err))
		}
		clear(batch)
		batch = batch[:0]
	}

	for {
		select {
		case e := <-w.events:
			batch = append(batch, e)
			if len(batch) >= w.opts.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-w.done:
			for {
				select {
				case e := <-w.events:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Close stops accepting events and waits for queued ones to be written.
func (w *AsyncWriter) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.done)
	}
	w.mu.Unlock()

	flushed := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(flushed)
	}()

	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/audit"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/logger"
)

type ctxKey string

func TestRecorder(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("fills context and options", func(t *testing.T) {
		t.Parallel()

		store := audit.NewMemoryStorage()
		rec := audit.NewRecorder(store,
			audit.WithService("employee"),
			audit.WithRequestIDExtractor(func(ctx context.Context) string {
				v, _ := ctx.Value(ctxKey("rid")).(string)
				return v
			}),
			audit.WithIPExtractor(func(context.Context) string { return "198.51.100.9" }),
			audit.WithClock(func() time.Time { return fixed }),
		)

		ctx := context.WithValue(context.Background(), ctxKey("rid"), "req-1")
		err := rec.Record(ctx, "tenant.cross_access_denied", audit.SeverityHigh,
			audit.WithTenant("t-a"),
			audit.WithRequestedTenant("t-b"),
			audit.WithCredentialRef("key-1"),
			audit.WithMetadata("path", "/employees"),
		)
		require.NoError(t, err)

		events := store.Events()
		require.Len(t, events, 1)
		e := events[0]
		assert.NotZero(t, e.ID)
		assert.Equal(t, "employee", e.Service)
		assert.Equal(t, "req-1", e.RequestID)
		assert.Equal(t, "198.51.100.9", e.IP)
		assert.Equal(t, "t-a", e.TenantID)
		assert.Equal(t, "t-b", e.RequestedTenant)
		assert.Equal(t, "key-1", e.CredentialRef)
		assert.Equal(t, fixed, e.CreatedAt)
		assert.Equal(t, "/employees", e.Metadata["path"])
	})

	t.Run("rejects invalid events", func(t *testing.T) {
		t.Parallel()

		store := audit.NewMemoryStorage()
		rec := audit.NewRecorder(store)

		require.ErrorIs(t, rec.Record(context.Background(), "", audit.SeverityLow), audit.ErrInvalidEvent)
		require.ErrorIs(t, rec.Record(context.Background(), "x", "urgent"), audit.ErrInvalidEvent)
		assert.Empty(t, store.Events())
	})

	t.Run("nil storage panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { audit.NewRecorder(nil) })
	})
}

func TestSlogStorage(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	store := audit.NewSlogStorage(logger.New(logger.WithOutput(buf)))
	require.NoError(t, store.Store(context.Background(), audit.Event{
		Type:          "tenant.cross_access_denied",
		Severity:      audit.SeverityHigh,
		TenantID:      "t-a",
		CredentialRef: "key-1",
	}))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "t-a", entry["tenant_id"])
	assert.Equal(t, "key-1", entry["credential_ref"])
	assert.NotContains(t, entry, "actor_id")
}

type failingStorage struct{}

func (failingStorage) Store(context.Context, audit.Event) error { return errors.New("down") }

func TestMultiStorage(t *testing.T) {
	t.Parallel()

	mem := audit.NewMemoryStorage()
	err := audit.MultiStorage{failingStorage{}, mem}.Store(context.Background(), audit.Event{Type: "x"})
	require.Error(t, err)
	assert.Len(t, mem.Events(), 1, "a failing storage does not stop the others")
}

type countingBatch struct {
	mu      sync.Mutex
	batches int
	events  int
}

func (c *countingBatch) StoreBatch(_ context.Context, events []audit.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches++
	c.events += len(events)
	return nil
}

func (c *countingBatch) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events
}

func TestAsyncWriter(t *testing.T) {
	t.Parallel()

	t.Run("flushes queued events on close", func(t *testing.T) {
		t.Parallel()

		sink := &countingBatch{}
		w := audit.NewAsyncWriter(sink, nil, audit.AsyncOptions{BatchSize: 10, BatchTimeout: time.Hour})
		for range 25 {
			require.NoError(t, w.Store(context.Background(), audit.Event{Type: "x"}))
		}
		require.NoError(t, w.Close(context.Background()))
		assert.Equal(t, 25, sink.total())

		require.ErrorIs(t, w.Store(context.Background(), audit.Event{Type: "x"}), audit.ErrWriterClosed)
	})

	t.Run("flushes partial batches on timeout", func(t *testing.T) {
		t.Parallel()

		sink := &countingBatch{}
		w := audit.NewAsyncWriter(sink, nil, audit.AsyncOptions{BatchSize: 100, BatchTimeout: 10 * time.Millisecond})
		t.Cleanup(func() { _ = w.Close(context.Background()) })

		require.NoError(t, w.Store(context.Background(), audit.Event{Type: "x"}))
		assert.Eventually(t, func() bool { return sink.total() == 1 }, time.Second, 5*time.Millisecond)
	})

	t.Run("concurrent stores lose nothing", func(t *testing.T) {
		t.Parallel()

		sink := &countingBatch{}
		w := audit.NewAsyncWriter(sink, nil, audit.AsyncOptions{BufferSize: 4, BatchSize: 3})

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 20 {
					assert.NoError(t, w.Store(context.Background(), audit.Event{Type: "x"}))
				}
			}()
		}
		wg.Wait()
		require.NoError(t, w.Close(context.Background()))
		assert.Equal(t, 160, sink.total())
	})
}

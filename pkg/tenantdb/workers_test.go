package tenantdb_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenantdb"
)

func newWorkers(t *testing.T, n int) (*tenantdb.Workers, *fakeConnector) {
	t.Helper()

	connector := newFakeConnector()
	resolver := newFakeResolver(
		newTenant(idA, "acme.example", true),
		newTenant(idB, "globex.example", true),
	)
	catalog := &fakeCatalog{missing: map[string]bool{}}

	w, err := tenantdb.NewWorkers(n, func(int) (*tenantdb.Switcher, error) {
		pool := tenantdb.NewPool(connector, centralDB)
		return tenantdb.NewSwitcher(tenantdb.ServiceEmployee, resolver, catalog, pool), nil
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close(context.Background()) })
	return w, connector
}

func TestWorkers(t *testing.T) {
	t.Parallel()

	t.Run("rejects a non-positive size", func(t *testing.T) {
		t.Parallel()

		_, err := tenantdb.NewWorkers(0, nil, nil)
		require.ErrorIs(t, err, tenantdb.ErrInvalidConfig)
	})

	t.Run("factory errors close created workers", func(t *testing.T) {
		t.Parallel()

		_, err := tenantdb.NewWorkers(3, func(i int) (*tenantdb.Switcher, error) {
			if i == 2 {
				return nil, errors.New("no")
			}
			return tenantdb.NewSwitcher(tenantdb.ServiceCore, newFakeResolver(), &fakeCatalog{},
				tenantdb.NewPool(newFakeConnector(), centralDB)), nil
		}, nil)
		require.Error(t, err)
	})

	t.Run("concurrent requests never share a switcher", func(t *testing.T) {
		t.Parallel()

		w, _ := newWorkers(t, 3)
		var active, peak atomic.Int32

		var wg sync.WaitGroup
		for i := range 12 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id := idA
				if i%2 == 0 {
					id = idB
				}
				err := w.Do(context.Background(), id, func(_ context.Context, h *tenantdb.Handle) error {
					n := active.Add(1)
					defer active.Add(-1)
					for {
						p := peak.Load()
						if n <= p || peak.CompareAndSwap(p, n) {
							break
						}
					}
					assert.Equal(t, id, h.Tenant().ID.String())
					time.Sleep(5 * time.Millisecond)
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.LessOrEqual(t, peak.Load(), int32(3))
		for _, info := range w.Info() {
			assert.Equal(t, tenantdb.StateCentral, info.State)
		}
	})

	t.Run("checkout honours the context", func(t *testing.T) {
		t.Parallel()

		w, _ := newWorkers(t, 1)
		s, err := w.Checkout(context.Background())
		require.NoError(t, err)
		defer w.Return(s)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err = w.Checkout(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("sweep skips busy workers", func(t *testing.T) {
		t.Parallel()

		w, _ := newWorkers(t, 2)
		busy, err := w.Checkout(context.Background())
		require.NoError(t, err)
		_, err = busy.SwitchToTenant(context.Background(), idA)
		require.NoError(t, err)

		assert.Zero(t, w.Sweep(time.Nanosecond))
		assert.Equal(t, tenantdb.StateTenantActive, busy.ConnectionInfo().State)

		require.NoError(t, busy.SwitchToCentral(context.Background()))
		w.Return(busy)
	})

	t.Run("closed workers refuse checkouts", func(t *testing.T) {
		t.Parallel()

		w, _ := newWorkers(t, 2)
		require.NoError(t, w.Close(context.Background()))

		err := w.Do(context.Background(), idA, func(context.Context, *tenantdb.Handle) error { return nil })
		require.ErrorIs(t, err, tenantdb.ErrWorkersClosed)
	})
}

type countingSweepable struct{ calls atomic.Int32 }

func (c *countingSweepable) Sweep(time.Duration) int {
	c.calls.Add(1)
	return 1
}

func TestSweeper(t *testing.T) {
	t.Parallel()

	target := &countingSweepable{}
	s := tenantdb.NewSweeper(target, 5*time.Millisecond, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return target.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

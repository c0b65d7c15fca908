package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tj-backend/application/ports"
)

var (
	nearbyKey = ports.NewCacheKey("nearby", []ports.CacheNamespace{ports.NamespaceLocations}, 1.5, 2.5, 1000)
	routeKey  = ports.NewCacheKey("optimal", []ports.CacheNamespace{ports.NamespaceRoutes, ports.NamespaceLocations}, 1, 3, 2)
	diaryKey  = ports.NewCacheKey("diary", []ports.CacheNamespace{ports.NamespaceDiaries}, 9)
)

type countingObserver struct {
	hits, misses, computed, invalidated atomic.Int64
}

func (o *countingObserver) CacheHit(string)                            { o.hits.Add(1) }
func (o *countingObserver) CacheMiss(string)                           { o.misses.Add(1) }
func (o *countingObserver) CacheComputed(string, time.Duration, error) { o.computed.Add(1) }
func (o *countingObserver) CacheInvalidated(string, int)               { o.invalidated.Add(1) }

func newTestCoordinator(t *testing.T, opts Options) *Coordinator {
	c, err := NewCoordinator(opts)
	require.NoError(t, err)
	return c
}

func counter(calls *atomic.Int64, value interface{}) ports.ComputeFunc {
	return func(context.Context) (interface{}, error) {
		calls.Add(1)
		return value, nil
	}
}

func TestCoordinator_ReadThrough(t *testing.T) {
	obs := &countingObserver{}
	c := newTestCoordinator(t, Options{Observer: obs})
	ctx := context.Background()
	var calls atomic.Int64

	for i := 0; i < 3; i++ {
		v, err := c.GetOrCompute(ctx, nearbyKey, 0, counter(&calls, "result"))
		require.NoError(t, err)
		assert.Equal(t, "result", v)
	}

	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, int64(2), obs.hits.Load())
	assert.Equal(t, int64(1), obs.misses.Load())
	assert.Equal(t, int64(1), obs.computed.Load())
}

func TestCoordinator_SingleFlight(t *testing.T) {
	c := newTestCoordinator(t, Options{})
	ctx := context.Background()

	var calls atomic.Int64
	started := make(chan struct{})
	release := make(chan struct{})
	fn := func(context.Context) (interface{}, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return 42, nil
	}

	const n = 50
	var wg sync.WaitGroup
	results := make([]interface{}, n)

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := c.GetOrCompute(ctx, routeKey, time.Minute, fn)
		assert.NoError(t, err)
		results[0] = v
	}()
	<-started

	for i := 1; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrCompute(ctx, routeKey, time.Minute, fn)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestCoordinator_FailuresAreNotCached(t *testing.T) {
	c := newTestCoordinator(t, Options{})
	ctx := context.Background()
	boom := errors.New("store unavailable")

	var calls atomic.Int64
	_, err := c.GetOrCompute(ctx, diaryKey, 0, func(context.Context) (interface{}, error) {
		calls.Add(1)
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := c.GetOrCompute(ctx, diaryKey, 0, counter(&calls, "ok"))
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int64(2), calls.Load())
}

func TestCoordinator_InvalidateNamespace(t *testing.T) {
	obs := &countingObserver{}
	c := newTestCoordinator(t, Options{Observer: obs})
	ctx := context.Background()
	var calls atomic.Int64

	_, _ = c.GetOrCompute(ctx, nearbyKey, 0, counter(&calls, "n"))
	_, _ = c.GetOrCompute(ctx, routeKey, 0, counter(&calls, "r"))
	_, _ = c.GetOrCompute(ctx, diaryKey, 0, counter(&calls, "d"))
	require.Equal(t, 3, c.Len())

	// routes depend on locations too
	assert.Equal(t, 2, c.Invalidate(ports.NamespaceLocations))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(1), obs.invalidated.Load())

	_, _ = c.GetOrCompute(ctx, nearbyKey, 0, counter(&calls, "n2"))
	_, _ = c.GetOrCompute(ctx, diaryKey, 0, counter(&calls, "d2"))
	assert.Equal(t, int64(4), calls.Load())

	assert.Equal(t, 0, c.Invalidate(ports.NamespaceFavorites))
}

func TestCoordinator_InvalidationDuringComputeIsNotStored(t *testing.T) {
	c := newTestCoordinator(t, Options{})
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan interface{})
	go func() {
		v, _ := c.GetOrCompute(ctx, nearbyKey, 0, func(context.Context) (interface{}, error) {
			close(started)
			<-release
			return "stale", nil
		})
		done <- v
	}()
	<-started

	c.Invalidate(ports.NamespaceLocations)

	// a caller arriving after the invalidation does not join the stale flight
	v, err := c.GetOrCompute(ctx, nearbyKey, 0, func(context.Context) (interface{}, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)

	close(release)
	assert.Equal(t, "stale", <-done)

	v, err = c.GetOrCompute(ctx, nearbyKey, 0, func(context.Context) (interface{}, error) {
		return "recomputed", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestCoordinator_InvalidateKey(t *testing.T) {
	c := newTestCoordinator(t, Options{})
	ctx := context.Background()
	var calls atomic.Int64

	_, _ = c.GetOrCompute(ctx, nearbyKey, 0, counter(&calls, 1))
	_, _ = c.GetOrCompute(ctx, diaryKey, 0, counter(&calls, 2))

	c.InvalidateKey(nearbyKey)
	assert.Equal(t, 1, c.Len())

	v, _ := c.GetOrCompute(ctx, nearbyKey, 0, counter(&calls, 3))
	assert.Equal(t, 3, v)
	v, _ = c.GetOrCompute(ctx, diaryKey, 0, counter(&calls, 4))
	assert.Equal(t, 2, v)
}

func TestCoordinator_TTL(t *testing.T) {
	c := newTestCoordinator(t, Options{DefaultTTL: time.Hour})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()
	var calls atomic.Int64

	_, _ = c.GetOrCompute(ctx, nearbyKey, 0, counter(&calls, "a"))
	now = now.Add(59 * time.Minute)
	_, _ = c.GetOrCompute(ctx, nearbyKey, 0, counter(&calls, "b"))
	assert.Equal(t, int64(1), calls.Load())

	now = now.Add(time.Minute)
	v, _ := c.GetOrCompute(ctx, nearbyKey, 0, counter(&calls, "c"))
	assert.Equal(t, "c", v)
	assert.Equal(t, int64(2), calls.Load())

	_, _ = c.GetOrCompute(ctx, diaryKey, time.Second, counter(&calls, "d"))
	now = now.Add(2 * time.Second)
	assert.Equal(t, 1, c.collectExpired())
	assert.Equal(t, 1, c.Len())
}

func TestCoordinator_CallerCancellationDoesNotCancelSharedWork(t *testing.T) {
	c := newTestCoordinator(t, Options{})

	started := make(chan struct{})
	release := make(chan struct{})
	var computeErr atomic.Value
	fn := func(ctx context.Context) (interface{}, error) {
		close(started)
		<-release
		computeErr.Store(ctx.Err() == nil)
		return "shared", nil
	}

	impatient, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.GetOrCompute(impatient, routeKey, 0, fn)
		errCh <- err
	}()
	<-started

	patient := make(chan interface{}, 1)
	go func() {
		v, _ := c.GetOrCompute(context.Background(), routeKey, 0, fn)
		patient <- v
	}()

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(release)
	assert.Equal(t, "shared", <-patient)
	assert.Equal(t, true, computeErr.Load())
	assert.Equal(t, 1, c.Len())
}

func TestCoordinator_CapacityEvictsLeastRecentlyUsed(t *testing.T) {
	c := newTestCoordinator(t, Options{Capacity: 2})
	ctx := context.Background()
	var calls atomic.Int64

	_, _ = c.GetOrCompute(ctx, nearbyKey, 0, counter(&calls, 1))
	_, _ = c.GetOrCompute(ctx, routeKey, 0, counter(&calls, 2))
	_, _ = c.GetOrCompute(ctx, nearbyKey, 0, counter(&calls, 0))
	_, _ = c.GetOrCompute(ctx, diaryKey, 0, counter(&calls, 3))

	assert.Equal(t, 2, c.Len())
	v, _ := c.GetOrCompute(ctx, nearbyKey, 0, counter(&calls, 9))
	assert.Equal(t, 1, v)
	assert.Equal(t, int64(3), calls.Load())
}

func TestCoordinator_RunStopsWithContext(t *testing.T) {
	c := newTestCoordinator(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

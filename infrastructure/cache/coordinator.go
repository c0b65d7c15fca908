// Package cache implements the read-through cache in front of derived views
// and entity lookups.
package cache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tj-backend/application/ports"
)

// Observer receives cache events; the metrics collector implements it.
type Observer interface {
	CacheHit(operation string)
	CacheMiss(operation string)
	CacheComputed(operation string, d time.Duration, err error)
	CacheInvalidated(namespace string, dropped int)
}

// Options configures a Coordinator.
type Options struct {
	Capacity   int
	DefaultTTL time.Duration
	Observer   Observer
	Logger     *zap.Logger
}

type entry struct {
	value     interface{}
	expiresAt time.Time
	deps      []ports.CacheNamespace
	stamp     string
}

// Coordinator is a bounded LRU of computed results. Each entry records the
// versions of the namespaces it depends on at the time its computation
// started; bumping a namespace version makes every older entry unreachable,
// including entries whose computation is still in flight.
type Coordinator struct {
	mu       sync.Mutex
	store    *lru.Cache[string, *entry]
	versions map[ports.CacheNamespace]uint64
	epochs   map[string]uint64
	group    singleflight.Group

	ttl      time.Duration
	observer Observer
	logger   *zap.Logger
	now      func() time.Time
}

var _ ports.CacheCoordinator = (*Coordinator)(nil)

// NewCoordinator creates a coordinator holding at most opts.Capacity entries.
func NewCoordinator(opts Options) (*Coordinator, error) {
	if opts.Capacity <= 0 {
		opts.Capacity = 10000
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	store, err := lru.New[string, *entry](opts.Capacity)
	if err != nil {
		return nil, err
	}
	return &Coordinator{
		store:    store,
		versions: make(map[ports.CacheNamespace]uint64),
		epochs:   make(map[string]uint64),
		ttl:      opts.DefaultTTL,
		observer: opts.Observer,
		logger:   opts.Logger,
		now:      time.Now,
	}, nil
}

// stamp renders the dependency versions and key epoch. Caller holds mu.
func (c *Coordinator) stamp(key ports.CacheKey, id string) string {
	var b strings.Builder
	for _, ns := range key.DependsOn {
		b.WriteString(string(ns))
		b.WriteByte('=')
		b.WriteString(strconv.FormatUint(c.versions[ns], 10))
		b.WriteByte(',')
	}
	b.WriteString("epoch=")
	b.WriteString(strconv.FormatUint(c.epochs[id], 10))
	return b.String()
}

// GetOrCompute serves key from the cache or computes it. Concurrent misses on
// the same key and versions share one computation. The computation runs
// detached from the caller's cancellation so that a caller giving up does not
// fail the other waiters; the caller itself returns as soon as ctx is done.
func (c *Coordinator) GetOrCompute(ctx context.Context, key ports.CacheKey, ttl time.Duration, fn ports.ComputeFunc) (interface{}, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	id := key.String()

	c.mu.Lock()
	stamp := c.stamp(key, id)
	if e, ok := c.store.Get(id); ok {
		if e.stamp == stamp && c.now().Before(e.expiresAt) {
			c.mu.Unlock()
			c.hit(key.Operation)
			return e.value, nil
		}
		c.store.Remove(id)
	}
	c.mu.Unlock()
	c.miss(key.Operation)

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(id+"@"+stamp, func() (interface{}, error) {
		start := c.now()
		value, err := fn(detached)
		c.computed(key.Operation, c.now().Sub(start), err)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.stamp(key, id) == stamp {
			c.store.Add(id, &entry{
				value:     value,
				expiresAt: c.now().Add(ttl),
				deps:      key.DependsOn,
				stamp:     stamp,
			})
		}
		return value, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate bumps the version of ns and drops the entries depending on it.
func (c *Coordinator) Invalidate(ns ports.CacheNamespace) int {
	c.mu.Lock()
	c.versions[ns]++
	dropped := 0
	for _, id := range c.store.Keys() {
		e, ok := c.store.Peek(id)
		if !ok {
			continue
		}
		for _, dep := range e.deps {
			if dep == ns {
				c.store.Remove(id)
				dropped++
				break
			}
		}
	}
	c.mu.Unlock()

	c.logger.Debug("cache namespace invalidated",
		zap.String("namespace", string(ns)),
		zap.Int("dropped", dropped))
	if c.observer != nil {
		c.observer.CacheInvalidated(string(ns), dropped)
	}
	return dropped
}

// InvalidateKey drops a single entry and fences off computations of it that
// are already running.
func (c *Coordinator) InvalidateKey(key ports.CacheKey) {
	id := key.String()

	c.mu.Lock()
	c.epochs[id]++
	c.store.Remove(id)
	c.mu.Unlock()

	c.logger.Debug("cache key invalidated", zap.String("key", id))
}

// Len returns the number of stored entries, including expired ones not yet
// collected.
func (c *Coordinator) Len() int {
	return c.store.Len()
}

// Purge drops every entry.
func (c *Coordinator) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ns := range c.versions {
		c.versions[ns]++
	}
	c.store.Purge()
}

// Run removes expired entries every interval until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.collectExpired()
		}
	}
}

func (c *Coordinator) collectExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, id := range c.store.Keys() {
		if e, ok := c.store.Peek(id); ok && !now.Before(e.expiresAt) {
			c.store.Remove(id)
			removed++
		}
	}
	return removed
}

func (c *Coordinator) hit(op string) {
	if c.observer != nil {
		c.observer.CacheHit(op)
	}
}

func (c *Coordinator) miss(op string) {
	if c.observer != nil {
		c.observer.CacheMiss(op)
	}
}

func (c *Coordinator) computed(op string, d time.Duration, err error) {
	if c.observer != nil {
		c.observer.CacheComputed(op, d, err)
	}
}

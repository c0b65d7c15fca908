package services

import (
	"cmp"
	"slices"
	"sync"
)

type heldLock struct {
	mu   sync.Mutex
	refs int
}

// keyedLocks hands out one mutex per key. Entries are dropped once no caller
// holds or waits for them.
type keyedLocks[K cmp.Ordered] struct {
	mu    sync.Mutex
	locks map[K]*heldLock
}

func newKeyedLocks[K cmp.Ordered]() *keyedLocks[K] {
	return &keyedLocks[K]{locks: make(map[K]*heldLock)}
}

// lock acquires every key in ascending order and returns the release func.
func (l *keyedLocks[K]) lock(keys ...K) func() {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	held := make([]*heldLock, len(keys))
	l.mu.Lock()
	for i, k := range keys {
		h, ok := l.locks[k]
		if !ok {
			h = &heldLock{}
			l.locks[k] = h
		}
		h.refs++
		held[i] = h
	}
	l.mu.Unlock()

	for _, h := range held {
		h.mu.Lock()
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
		}
		l.mu.Lock()
		for i, k := range keys {
			if held[i].refs--; held[i].refs == 0 {
				delete(l.locks, k)
			}
		}
		l.mu.Unlock()
	}
}

package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter provides rate limiting functionality
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// SlidingWindowLimiter allows at most limit requests per key within any
// window of windowSize
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string]*window
	limit      int
	windowSize time.Duration
	now        func() time.Time
}

type window struct {
	requests []time.Time
	mu       sync.Mutex
}

var _ RateLimiter = (*SlidingWindowLimiter)(nil)

// NewSlidingWindowLimiter creates a new sliding window rate limiter
func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		windows:    make(map[string]*window),
		limit:      limit,
		windowSize: windowSize,
		now:        time.Now,
	}
}

// Limit returns the number of requests allowed per window
func (l *SlidingWindowLimiter) Limit() int { return l.limit }

// Window returns the window length
func (l *SlidingWindowLimiter) Window() time.Duration { return l.windowSize }

// Allow checks if a request is allowed and counts it when it is
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	w, exists := l.windows[key]
	if !exists {
		w = &window{}
		l.windows[key] = w
	}
	l.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	w.trim(now.Add(-l.windowSize))
	if len(w.requests) >= l.limit {
		return false, nil
	}
	w.requests = append(w.requests, now)
	return true, nil
}

func (w *window) trim(start time.Time) {
	i := 0
	for i < len(w.requests) && !w.requests[i].After(start) {
		i++
	}
	w.requests = w.requests[i:]
}

// Reset resets the rate limit for a key
func (l *SlidingWindowLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}

// Cleanup drops keys with no request inside the window and returns how many
// were dropped
func (l *SlidingWindowLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := l.now().Add(-l.windowSize)
	dropped := 0
	for key, w := range l.windows {
		w.mu.Lock()
		w.trim(start)
		empty := len(w.requests) == 0
		w.mu.Unlock()
		if empty {
			delete(l.windows, key)
			dropped++
		}
	}
	return dropped
}

// Run calls Cleanup every interval until ctx is done
func (l *SlidingWindowLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

// ClientRateLimiter limits requests per client, keyed by user when the
// request is authenticated and by IP otherwise
type ClientRateLimiter struct {
	*SlidingWindowLimiter
}

// NewClientRateLimiter creates a limiter allowing requestsPerMinute per client
func NewClientRateLimiter(requestsPerMinute int) *ClientRateLimiter {
	return &ClientRateLimiter{NewSlidingWindowLimiter(requestsPerMinute, time.Minute)}
}

// AllowIP checks a request from an anonymous client
func (l *ClientRateLimiter) AllowIP(ctx context.Context, ip string) (bool, error) {
	return l.Allow(ctx, "ip:"+ip)
}

// AllowUser checks a request from an authenticated user
func (l *ClientRateLimiter) AllowUser(ctx context.Context, userID string) (bool, error) {
	return l.Allow(ctx, "user:"+userID)
}

package mysql

import (
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"tj-backend/pkg/errors"
	"tj-backend/pkg/observability"
)

// BreakerConfig holds configuration for the store circuit breaker
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration

	// The breaker trips once MinRequests calls were seen in the current
	// interval and at least FailureThreshold of them failed.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the configuration used in production
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "mysql",
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      10,
	}
}

// Breaker guards store calls. While open, calls fail immediately with an
// UNAVAILABLE error without reaching the database. Lookups that find nothing
// and rejected input do not count as failures.
type Breaker struct {
	cb      *gobreaker.CircuitBreaker
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewBreaker creates a breaker reporting its state to metrics
func NewBreaker(cfg BreakerConfig, metrics *observability.Collector, logger *zap.Logger) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Breaker{metrics: metrics, logger: logger}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			b.metrics.SetBreakerState(name, int(to))
		},
		IsSuccessful: successful,
	})
	b.metrics.SetBreakerState(cfg.Name, int(gobreaker.StateClosed))
	return b
}

func successful(err error) bool {
	return err == nil || stderrors.Is(err, sql.ErrNoRows) || errors.IsClientError(err)
}

// Do runs fn through the breaker. Errors from fn are returned unchanged; a
// rejected call returns UNAVAILABLE.
func (b *Breaker) Do(operation string, fn func() error) error {
	if b == nil {
		return fn()
	}
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		b.metrics.RecordStoreFailure(operation)
		return errors.NewUnavailableError("store", err).WithDetail("operation", operation)
	}
	return err
}

// State returns the current breaker state
func (b *Breaker) State() gobreaker.State {
	if b == nil {
		return gobreaker.StateClosed
	}
	return b.cb.State()
}

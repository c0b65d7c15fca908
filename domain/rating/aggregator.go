// Package rating maintains per-location rating and visit statistics.
package rating

import (
	"math"
	"sync"

	"tj-backend/domain/core/valueobjects"
	pkgerrors "tj-backend/pkg/errors"
)

// Stats is a snapshot of one location's counters.
type Stats struct {
	Rating valueobjects.RatingAggregate
	Visits int64
}

type entry struct {
	mu    sync.Mutex
	stats Stats
}

// Aggregator serializes updates per location id. Updates to different
// locations only contend on the registry read lock.
type Aggregator struct {
	mu       sync.RWMutex
	entries  map[valueobjects.LocationID]*entry
	min, max float64
}

// NewAggregator creates an aggregator accepting ratings in [min, max].
func NewAggregator(min, max float64) *Aggregator {
	return &Aggregator{
		entries: make(map[valueobjects.LocationID]*entry),
		min:     min,
		max:     max,
	}
}

// Seed registers a location with its stored counters, replacing any previous
// state.
func (a *Aggregator) Seed(id valueobjects.LocationID, stats Stats) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[id] = &entry{stats: stats}
}

// Track registers a location with zero counters unless it is already known.
func (a *Aggregator) Track(id valueobjects.LocationID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.entries[id]; !ok {
		a.entries[id] = &entry{}
	}
}

// Remove forgets a location.
func (a *Aggregator) Remove(id valueobjects.LocationID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.entries, id)
}

// Get returns the current counters of id.
func (a *Aggregator) Get(id valueobjects.LocationID) (Stats, error) {
	e, err := a.lookup(id)
	if err != nil {
		return Stats{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats, nil
}

func (a *Aggregator) lookup(id valueobjects.LocationID) (*entry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, ok := a.entries[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundErrorID("location", id)
	}
	return e, nil
}

// ValidateValue checks that value is a finite number within the accepted range.
func (a *Aggregator) ValidateValue(value float64) error {
	if math.IsNaN(value) || value < a.min || value > a.max {
		return pkgerrors.NewValidationErrorf("rating must be within [%v, %v], got %v", a.min, a.max, value)
	}
	return nil
}

// ApplyRating folds value into the location's aggregate. persist is called
// with the new aggregate while the location is locked; the new state is kept
// only if persist succeeds, so concurrent submissions never lose updates and a
// failed write leaves the aggregate unchanged.
func (a *Aggregator) ApplyRating(id valueobjects.LocationID, value float64, persist func(valueobjects.RatingAggregate) error) (valueobjects.RatingAggregate, error) {
	if err := a.ValidateValue(value); err != nil {
		return valueobjects.RatingAggregate{}, err
	}
	e, err := a.lookup(id)
	if err != nil {
		return valueobjects.RatingAggregate{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.stats.Rating.Apply(value)
	if persist != nil {
		if err := persist(next); err != nil {
			return valueobjects.RatingAggregate{}, err
		}
	}
	e.stats.Rating = next
	return next, nil
}

// RecordVisit increments the visit counter under the same per-location
// discipline as ApplyRating.
func (a *Aggregator) RecordVisit(id valueobjects.LocationID, persist func(visits int64) error) (int64, error) {
	e, err := a.lookup(id)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.stats.Visits + 1
	if persist != nil {
		if err := persist(next); err != nil {
			return 0, err
		}
	}
	e.stats.Visits = next
	return next, nil
}

package rating

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tj-backend/domain/core/valueobjects"
	pkgerrors "tj-backend/pkg/errors"
)

func TestAggregator_FiveThenThree(t *testing.T) {
	a := NewAggregator(0, 5)
	a.Track(1)

	_, err := a.ApplyRating(1, 5, nil)
	require.NoError(t, err)
	agg, err := a.ApplyRating(1, 3, nil)
	require.NoError(t, err)

	assert.InDelta(t, 4.0, agg.Average(), 1e-9)
	assert.Equal(t, int64(2), agg.Count)
}

func TestAggregator_Validation(t *testing.T) {
	a := NewAggregator(0, 5)
	a.Track(1)

	for _, v := range []float64{-0.1, 5.01, math.NaN(), math.Inf(1)} {
		_, err := a.ApplyRating(1, v, nil)
		assert.True(t, pkgerrors.IsValidation(err), "value %v", v)
	}

	for _, v := range []float64{0, 5} {
		_, err := a.ApplyRating(1, v, nil)
		assert.NoError(t, err)
	}

	_, err := a.ApplyRating(2, 3, nil)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestAggregator_FailedPersistLeavesStateUnchanged(t *testing.T) {
	a := NewAggregator(0, 5)
	a.Seed(1, Stats{Rating: valueobjects.NewRatingAggregate(4, 2), Visits: 3})

	boom := errors.New("store down")
	_, err := a.ApplyRating(1, 1, func(valueobjects.RatingAggregate) error { return boom })
	assert.ErrorIs(t, err, boom)

	_, err = a.RecordVisit(1, func(int64) error { return boom })
	assert.ErrorIs(t, err, boom)

	stats, err := a.Get(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Rating.Count)
	assert.InDelta(t, 4.0, stats.Rating.Average(), 1e-9)
	assert.Equal(t, int64(3), stats.Visits)
}

func TestAggregator_ConcurrentUpdatesAreNotLost(t *testing.T) {
	a := NewAggregator(0, 5)
	a.Track(1)
	a.Track(2)

	const workers, perWorker = 8, 250
	var wg sync.WaitGroup
	var sumMu sync.Mutex
	var sum float64
	var persisted int64

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				v := float64((w+i)%6) * 0.75
				_, err := a.ApplyRating(1, v, func(agg valueobjects.RatingAggregate) error {
					persisted = agg.Count // serialized by the entry lock
					return nil
				})
				assert.NoError(t, err)
				sumMu.Lock()
				sum += v
				sumMu.Unlock()

				_, err = a.RecordVisit(2, nil)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	stats, err := a.Get(1)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), stats.Rating.Count)
	assert.Equal(t, int64(workers*perWorker), persisted)
	assert.InDelta(t, sum, stats.Rating.Average()*float64(stats.Rating.Count), 1e-9)

	visits, err := a.Get(2)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), visits.Visits)
}

func TestAggregator_Remove(t *testing.T) {
	a := NewAggregator(0, 5)
	a.Track(1)
	a.Remove(1)

	_, err := a.Get(1)
	assert.True(t, pkgerrors.IsNotFound(err))
	_, err = a.RecordVisit(1, nil)
	assert.True(t, pkgerrors.IsNotFound(err))
}

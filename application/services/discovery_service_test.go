package services

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/infrastructure/persistence/memory"
	"tj-backend/pkg/errors"
)

func TestOptimalRoutes_ThreeNodeScenario(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture(t)
	a := f.location(t, "A", 0, 0)
	b := f.location(t, "B", 0, 1)
	c := f.location(t, "C", 0, 2)
	ab := f.route(t, a.ID, b.ID, time.Hour)
	bc := f.route(t, b.ID, c.ID, time.Hour)

	// Act
	oneStop, err := f.discovery.OptimalRoutes(ctx, 0, a.ID, c.ID, 1)
	require.NoError(t, err)
	direct, err := f.discovery.OptimalRoutes(ctx, 0, a.ID, c.ID, 0)
	require.NoError(t, err)

	// Assert
	require.Len(t, oneStop, 1)
	assert.Equal(t, 2*time.Hour, oneStop[0].TotalDuration)
	assert.Equal(t, 1, oneStop[0].Stops)
	assert.Equal(t, []valueobjects.RouteID{ab.ID, bc.ID}, oneStop[0].EdgeIDs())
	assert.Empty(t, direct)
}

func TestOptimalRoutes_RouteMutationInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.location(t, "A", 0, 0)
	c := f.location(t, "C", 0, 2)

	before, err := f.discovery.OptimalRoutes(ctx, 0, a.ID, c.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, before)

	direct := f.route(t, a.ID, c.ID, 3*time.Hour)

	after, err := f.discovery.OptimalRoutes(ctx, 0, a.ID, c.ID, 0)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, direct.ID, after[0].Edges[0].ID)

	require.NoError(t, f.routes.Delete(ctx, 1, direct.ID))

	gone, err := f.discovery.OptimalRoutes(ctx, 0, a.ID, c.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestOptimalRoutes_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.location(t, "A", 0, 0)

	_, err := f.discovery.OptimalRoutes(ctx, 0, a.ID, 999, 2)
	assert.True(t, errors.IsNotFound(err))

	_, err = f.discovery.OptimalRoutes(ctx, 0, a.ID, a.ID, 1000)
	assert.True(t, errors.IsValidation(err))

	self, err := f.discovery.OptimalRoutes(ctx, 0, a.ID, a.ID, -3)
	require.NoError(t, err)
	assert.Empty(t, self)
}

func TestNearbyLocations_ReflectsMovedLocation(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture(t)
	a := f.location(t, "A", 0, 0)
	b := f.location(t, "B", 0, 0.005)

	// Act
	first, err := f.discovery.NearbyLocations(ctx, 0, 0, 1000)
	require.NoError(t, err)

	_, err = f.locations.Update(ctx, a.ID, entities.LocationDetails{Name: "A", City: "Testville", Latitude: 10, Longitude: 10})
	require.NoError(t, err)

	second, err := f.discovery.NearbyLocations(ctx, 0, 0, 1000)
	require.NoError(t, err)

	// Assert
	require.Len(t, first, 2)
	assert.Equal(t, a.ID, first[0].ID)
	assert.Equal(t, b.ID, first[1].ID)
	require.Len(t, second, 1)
	assert.Equal(t, b.ID, second[0].ID)

	moved, err := f.discovery.NearbyLocations(ctx, 10, 10, 10)
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, a.ID, moved[0].ID)
}

func TestNearbyLocations_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.discovery.NearbyLocations(ctx, 0, 0, -1)
	assert.True(t, errors.IsValidation(err))

	_, err = f.discovery.NearbyLocations(ctx, 91, 0, 10)
	assert.True(t, errors.IsValidation(err))
}

func TestApplyRating_AverageAndInvalidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	loc := f.location(t, "A", 0, 0)

	// warm the cached location
	_, err := f.locations.Get(ctx, loc.ID)
	require.NoError(t, err)

	_, err = f.discovery.ApplyRating(ctx, loc.ID, 5)
	require.NoError(t, err)
	agg, err := f.discovery.ApplyRating(ctx, loc.ID, 3)
	require.NoError(t, err)

	assert.InDelta(t, 4.0, agg.Average(), 1e-9)
	assert.Equal(t, int64(2), agg.Count)

	cached, err := f.locations.Get(ctx, loc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cached.Rating.Count)

	current, err := f.discovery.Rating(ctx, loc.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, current.Average(), 1e-9)
}

func TestApplyRating_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	loc := f.location(t, "A", 0, 0)

	_, err := f.discovery.ApplyRating(ctx, loc.ID, 5.5)
	assert.True(t, errors.IsValidation(err))

	_, err = f.discovery.ApplyRating(ctx, 404, 3)
	assert.True(t, errors.IsNotFound(err))
}

func TestApplyRating_ConcurrentSubmissionsAreNotLost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	loc := f.location(t, "A", 0, 0)

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.discovery.ApplyRating(ctx, loc.ID, float64(i%6))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(i % 6)
	}

	stored, err := f.repos.Locations.GetByID(ctx, loc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), stored.Rating.Count)
	assert.InDelta(t, sum, stored.Rating.Average()*float64(stored.Rating.Count), 1e-9)
}

// failingRatings fails every rating write
type failingRatings struct {
	*memory.LocationRepository
}

func (failingRatings) UpdateRating(context.Context, valueobjects.LocationID, valueobjects.RatingAggregate) error {
	return stderrors.New("connection reset")
}

func TestApplyRating_StoreFailureIsUnavailable(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	repos.Locations = failingRatings{memory.NewLocationRepository()}
	f := newFixtureWith(t, repos)
	loc := f.location(t, "A", 0, 0)

	_, err := f.discovery.ApplyRating(ctx, loc.ID, 4)

	assert.True(t, errors.IsUnavailable(err))
	current, err := f.discovery.Rating(ctx, loc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), current.Count)
}

func TestRecordVisit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	loc := f.location(t, "A", 0, 0)

	for i := 0; i < 3; i++ {
		_, err := f.locations.RecordVisit(ctx, loc.ID)
		require.NoError(t, err)
	}

	got, err := f.locations.Get(ctx, loc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.VisitCount)
}

func TestHydrate_LoadsStore(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repos := memory.NewRepositories()
	var ids []valueobjects.LocationID
	for i, name := range []string{"A", "B", "C"} {
		loc, err := entities.NewLocation(entities.LocationDetails{Name: name, City: "X", Latitude: 0, Longitude: float64(i)})
		require.NoError(t, err)
		require.NoError(t, repos.Locations.Create(ctx, loc))
		ids = append(ids, loc.ID)
	}
	require.NoError(t, repos.Locations.UpdateRating(ctx, ids[0], valueobjects.NewRatingAggregate(4, 2)))
	for _, pair := range [][2]int{{0, 1}, {1, 2}} {
		r := entities.NewRoute(1, entities.RouteDetails{Name: "r", StartID: ids[pair[0]], EndID: ids[pair[1]], Duration: time.Hour})
		require.NoError(t, repos.Routes.Create(ctx, r))
	}
	orphan := entities.NewRoute(1, entities.RouteDetails{Name: "orphan", StartID: ids[0], EndID: 999, Duration: time.Hour})
	require.NoError(t, repos.Routes.Create(ctx, orphan))

	f := newFixtureWith(t, repos)

	// Act
	require.NoError(t, f.discovery.Hydrate(ctx))

	// Assert
	paths, err := f.discovery.OptimalRoutes(ctx, 1, ids[0], ids[2], 1)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, 2*time.Hour, paths[0].TotalDuration)

	agg, err := f.discovery.ApplyRating(ctx, ids[0], 1)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, agg.Average(), 1e-9)

	near, err := f.discovery.NearbyLocations(ctx, 0, 0, 250000)
	require.NoError(t, err)
	assert.Len(t, near, 3)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.publisher.ExpectedCalls = nil
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(stderrors.New("bus down"))

	loc := f.location(t, "A", 0, 0)
	_, err := f.discovery.ApplyRating(ctx, loc.ID, 2)

	assert.NoError(t, err)
	f.publisher.AssertCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestMutationHooksInvalidateNamespaces(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	loc := f.location(t, "A", 0, 0)

	_, err := f.locations.Popular(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, 1, f.cache.Len())

	f.discovery.OnLocationDeleted(ctx, loc.ID)

	assert.Equal(t, 0, f.cache.Len())
	assert.False(t, f.discovery.HasLocation(loc.ID))
}

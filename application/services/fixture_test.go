package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tj-backend/application/ports"
	"tj-backend/domain/config"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/validators"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/domain/events"
	"tj-backend/infrastructure/cache"
	"tj-backend/infrastructure/persistence/memory"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

type fixture struct {
	repos     ports.Repositories
	cache     *cache.Coordinator
	publisher *mockPublisher
	discovery *DiscoveryService
	locations *LocationService
	routes    *RouteService
	diaries   *DiaryService
	favorites *FavoriteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, memory.NewRepositories())
}

func newFixtureWith(t *testing.T, repos ports.Repositories) *fixture {
	t.Helper()

	coord, err := cache.NewCoordinator(cache.Options{Capacity: 1000})
	require.NoError(t, err)

	publisher := new(mockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	cfg := config.DefaultDomainConfig()
	validator := validators.NewTravelValidator(cfg)
	logger := zap.NewNop()

	discovery := NewDiscoveryService(repos, coord, publisher, cfg, nil, nil, logger)
	return &fixture{
		repos:     repos,
		cache:     coord,
		publisher: publisher,
		discovery: discovery,
		locations: NewLocationService(repos, discovery, coord, validator, cfg, logger),
		routes:    NewRouteService(repos, discovery, coord, validator, cfg, logger),
		diaries:   NewDiaryService(repos, discovery, coord, publisher, validator, cfg, logger),
		favorites: NewFavoriteService(repos, coord, cfg, logger),
	}
}

func (f *fixture) location(t *testing.T, name string, lat, lon float64) *entities.Location {
	t.Helper()
	loc, err := f.locations.Create(context.Background(), entities.LocationDetails{
		Name:      name,
		City:      "Testville",
		Latitude:  lat,
		Longitude: lon,
		Public:    true,
	})
	require.NoError(t, err)
	return loc
}

func (f *fixture) route(t *testing.T, from, to valueobjects.LocationID, d time.Duration) *entities.Route {
	t.Helper()
	r, err := f.routes.Create(context.Background(), 1, entities.RouteDetails{
		Name:     "route",
		StartID:  from,
		EndID:    to,
		Duration: d,
		Public:   true,
	})
	require.NoError(t, err)
	return r
}

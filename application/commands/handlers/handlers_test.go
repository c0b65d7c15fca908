package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tj-backend/application/commands"
	"tj-backend/application/commands/bus"
	"tj-backend/application/services"
	"tj-backend/domain/config"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/validators"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/infrastructure/cache"
	"tj-backend/infrastructure/persistence/memory"
	"tj-backend/pkg/errors"
)

func newBus(t *testing.T) *bus.CommandBus {
	t.Helper()

	repos := memory.NewRepositories()
	coord, err := cache.NewCoordinator(cache.Options{Capacity: 100})
	require.NoError(t, err)

	cfg := config.DefaultDomainConfig()
	validator := validators.NewTravelValidator(cfg)
	logger := zap.NewNop()
	discovery := services.NewDiscoveryService(repos, coord, nil, cfg, nil, nil, logger)

	b := bus.NewCommandBus(bus.LoggingMiddleware(logger))
	require.NoError(t, Register(b, Services{
		Locations: services.NewLocationService(repos, discovery, coord, validator, cfg, logger),
		Routes:    services.NewRouteService(repos, discovery, coord, validator, cfg, logger),
		Diaries:   services.NewDiaryService(repos, discovery, coord, nil, validator, cfg, logger),
		Favorites: services.NewFavoriteService(repos, coord, cfg, logger),
	}))
	return b
}

func createLocation(t *testing.T, b *bus.CommandBus, name string, lat, lon float64) *entities.Location {
	t.Helper()
	result, err := b.Send(context.Background(), commands.CreateLocationCommand{LocationFields: commands.LocationFields{
		Name:      name,
		City:      "Hangzhou",
		Latitude:  lat,
		Longitude: lon,
		Public:    true,
	}})
	require.NoError(t, err)
	return result.(*entities.Location)
}

func TestRegister_LocationLifecycle(t *testing.T) {
	b := newBus(t)
	ctx := context.Background()

	loc := createLocation(t, b, "West Lake", 30.24, 120.14)
	assert.NotZero(t, loc.ID)

	visits, err := b.Send(ctx, commands.RecordVisitCommand{ID: loc.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), visits)

	agg, err := b.Send(ctx, commands.RateLocationCommand{ID: loc.ID, Value: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(1), agg.(valueobjects.RatingAggregate).Count)

	_, err = b.Send(ctx, commands.DeleteLocationCommand{ID: loc.ID})
	require.NoError(t, err)

	_, err = b.Send(ctx, commands.RecordVisitCommand{ID: loc.ID})
	assert.True(t, errors.IsNotFound(err))
}

func TestRegister_CommandValidation(t *testing.T) {
	b := newBus(t)

	tests := []struct {
		name string
		cmd  bus.Command
	}{
		{"location without name", commands.CreateLocationCommand{LocationFields: commands.LocationFields{City: "x"}}},
		{"latitude out of range", commands.CreateLocationCommand{LocationFields: commands.LocationFields{Name: "x", City: "x", Latitude: 91}}},
		{"bad image url", commands.AddLocationImageCommand{ID: 1, URL: "not a url"}},
		{"route to itself", commands.CreateRouteCommand{UserID: 1, RouteFields: commands.RouteFields{Name: "loop", StartID: 1, EndID: 1}}},
		{"diary without title", commands.CreateDiaryCommand{UserID: 1, DiaryFields: commands.DiaryFields{LocationID: 1}}},
		{"favorite without target", commands.AddFavoriteCommand{UserID: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Send(context.Background(), tt.cmd)
			require.Error(t, err)
			assert.ErrorIs(t, err, bus.ErrValidationFailed)
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestRegister_RoutesDiariesFavorites(t *testing.T) {
	b := newBus(t)
	ctx := context.Background()

	a := createLocation(t, b, "A", 30.0, 120.0)
	c := createLocation(t, b, "C", 30.1, 120.1)

	result, err := b.Send(ctx, commands.CreateRouteCommand{UserID: 7, RouteFields: commands.RouteFields{
		Name:     "A to C",
		StartID:  a.ID,
		EndID:    c.ID,
		Duration: 90 * time.Minute,
		Public:   true,
	}})
	require.NoError(t, err)
	route := result.(*entities.Route)

	_, err = b.Send(ctx, commands.DeleteRouteCommand{UserID: 8, ID: route.ID})
	assert.True(t, errors.IsForbidden(err))

	result, err = b.Send(ctx, commands.CreateDiaryCommand{UserID: 7, DiaryFields: commands.DiaryFields{
		LocationID: a.ID,
		Title:      "Boat ride",
		Public:     true,
	}})
	require.NoError(t, err)
	diary := result.(*entities.Diary)

	likes, err := b.Send(ctx, commands.LikeDiaryCommand{UserID: 8, ID: diary.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), likes)

	_, err = b.Send(ctx, commands.AddFavoriteCommand{UserID: 7, Target: valueobjects.RouteTarget{ID: route.ID}})
	require.NoError(t, err)
	_, err = b.Send(ctx, commands.RemoveFavoriteCommand{UserID: 7, Target: valueobjects.RouteTarget{ID: route.ID}})
	require.NoError(t, err)

	_, err = b.Send(ctx, commands.DeleteRouteCommand{UserID: 7, ID: route.ID})
	require.NoError(t, err)
}

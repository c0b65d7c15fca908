// Package handlers binds travel queries to the application services.
package handlers

import (
	"context"
	"fmt"

	"tj-backend/application/queries"
	"tj-backend/application/queries/bus"
	"tj-backend/application/services"
)

// Services groups the services queries are answered by
type Services struct {
	Locations *services.LocationService
	Routes    *services.RouteService
	Diaries   *services.DiaryService
	Favorites *services.FavoriteService
}

func handle[Q bus.Query](fn func(ctx context.Context, q Q) (interface{}, error)) bus.QueryHandler {
	return bus.QueryHandlerFunc(func(ctx context.Context, query bus.Query) (interface{}, error) {
		typed, ok := query.(Q)
		if !ok {
			return nil, fmt.Errorf("unexpected query type %T", query)
		}
		return fn(ctx, typed)
	})
}

// Register registers a handler for every travel query
func Register(b *bus.QueryBus, svc Services) error {
	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		// Locations
		{queries.GetLocationQuery{}, handle(func(ctx context.Context, q queries.GetLocationQuery) (interface{}, error) {
			return svc.Locations.Get(ctx, q.ID)
		})},
		{queries.ListLocationsQuery{}, handle(func(ctx context.Context, q queries.ListLocationsQuery) (interface{}, error) {
			return svc.Locations.List(ctx, q.Filter(), q.Request())
		})},
		{queries.SearchLocationsQuery{}, handle(func(ctx context.Context, q queries.SearchLocationsQuery) (interface{}, error) {
			return svc.Locations.Search(ctx, q.Text, q.Request())
		})},
		{queries.PopularLocationsQuery{}, handle(func(ctx context.Context, q queries.PopularLocationsQuery) (interface{}, error) {
			return svc.Locations.Popular(ctx, q.Limit)
		})},
		{queries.NearbyLocationsQuery{}, handle(func(ctx context.Context, q queries.NearbyLocationsQuery) (interface{}, error) {
			return svc.Locations.Nearby(ctx, q.Latitude, q.Longitude, q.RadiusMeters, q.Limit)
		})},

		// Routes
		{queries.GetRouteQuery{}, handle(func(ctx context.Context, q queries.GetRouteQuery) (interface{}, error) {
			return svc.Routes.Get(ctx, q.Requester, q.ID)
		})},
		{queries.RouteDurationQuery{}, handle(func(ctx context.Context, q queries.RouteDurationQuery) (interface{}, error) {
			return svc.Routes.Duration(ctx, q.Requester, q.ID)
		})},
		{queries.RoutesByUserQuery{}, handle(func(ctx context.Context, q queries.RoutesByUserQuery) (interface{}, error) {
			return svc.Routes.ByUser(ctx, q.Requester, q.UserID, q.Request())
		})},
		{queries.RoutesByStartQuery{}, handle(func(ctx context.Context, q queries.RoutesByStartQuery) (interface{}, error) {
			return svc.Routes.ByStart(ctx, q.LocationID, q.Request())
		})},
		{queries.RoutesByEndQuery{}, handle(func(ctx context.Context, q queries.RoutesByEndQuery) (interface{}, error) {
			return svc.Routes.ByEnd(ctx, q.LocationID, q.Request())
		})},
		{queries.OptimalRoutesQuery{}, handle(func(ctx context.Context, q queries.OptimalRoutesQuery) (interface{}, error) {
			return svc.Routes.Optimal(ctx, q.Requester, q.StartID, q.EndID, q.MaxStops)
		})},
		{queries.PopularRoutesQuery{}, handle(func(ctx context.Context, q queries.PopularRoutesQuery) (interface{}, error) {
			return svc.Routes.Popular(ctx, q.Limit)
		})},
		{queries.RecommendedRoutesQuery{}, handle(func(ctx context.Context, q queries.RecommendedRoutesQuery) (interface{}, error) {
			return svc.Routes.Recommended(ctx, q.UserID, q.Limit)
		})},

		// Diaries
		{queries.GetDiaryQuery{}, handle(func(ctx context.Context, q queries.GetDiaryQuery) (interface{}, error) {
			return svc.Diaries.Get(ctx, q.Requester, q.ID)
		})},
		{queries.DiariesByUserQuery{}, handle(func(ctx context.Context, q queries.DiariesByUserQuery) (interface{}, error) {
			return svc.Diaries.ByUser(ctx, q.Requester, q.UserID, q.Request())
		})},
		{queries.DiariesByLocationQuery{}, handle(func(ctx context.Context, q queries.DiariesByLocationQuery) (interface{}, error) {
			return svc.Diaries.ByLocation(ctx, q.LocationID, q.Request())
		})},
		{queries.DiariesByTagQuery{}, handle(func(ctx context.Context, q queries.DiariesByTagQuery) (interface{}, error) {
			return svc.Diaries.ByTag(ctx, q.Tag, q.Request())
		})},
		{queries.PopularDiariesQuery{}, handle(func(ctx context.Context, q queries.PopularDiariesQuery) (interface{}, error) {
			return svc.Diaries.Popular(ctx, q.Limit)
		})},

		// Favorites
		{queries.ListFavoritesQuery{}, handle(func(ctx context.Context, q queries.ListFavoritesQuery) (interface{}, error) {
			return svc.Favorites.List(ctx, q.UserID)
		})},
	}

	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}

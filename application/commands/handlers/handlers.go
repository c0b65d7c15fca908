// Package handlers binds travel commands to the application services.
package handlers

import (
	"context"
	"fmt"

	"tj-backend/application/commands"
	"tj-backend/application/commands/bus"
	"tj-backend/application/services"
)

// Services groups the services commands are dispatched to
type Services struct {
	Locations *services.LocationService
	Routes    *services.RouteService
	Diaries   *services.DiaryService
	Favorites *services.FavoriteService
}

// handle adapts a typed function to a bus.CommandHandler
func handle[C bus.Command](fn func(ctx context.Context, cmd C) (interface{}, error)) bus.CommandHandler {
	return bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
		typed, ok := cmd.(C)
		if !ok {
			return nil, fmt.Errorf("unexpected command type %T", cmd)
		}
		return fn(ctx, typed)
	})
}

// Register registers a handler for every travel command
func Register(b *bus.CommandBus, svc Services) error {
	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		// Locations
		{commands.CreateLocationCommand{}, handle(func(ctx context.Context, c commands.CreateLocationCommand) (interface{}, error) {
			return svc.Locations.Create(ctx, c.Details())
		})},
		{commands.UpdateLocationCommand{}, handle(func(ctx context.Context, c commands.UpdateLocationCommand) (interface{}, error) {
			return svc.Locations.Update(ctx, c.ID, c.Details())
		})},
		{commands.DeleteLocationCommand{}, handle(func(ctx context.Context, c commands.DeleteLocationCommand) (interface{}, error) {
			return nil, svc.Locations.Delete(ctx, c.ID)
		})},
		{commands.AddLocationImageCommand{}, handle(func(ctx context.Context, c commands.AddLocationImageCommand) (interface{}, error) {
			return svc.Locations.AddImage(ctx, c.ID, c.URL)
		})},
		{commands.RemoveLocationImageCommand{}, handle(func(ctx context.Context, c commands.RemoveLocationImageCommand) (interface{}, error) {
			return svc.Locations.RemoveImage(ctx, c.ID, c.URL)
		})},
		{commands.RecordVisitCommand{}, handle(func(ctx context.Context, c commands.RecordVisitCommand) (interface{}, error) {
			return svc.Locations.RecordVisit(ctx, c.ID)
		})},
		{commands.RateLocationCommand{}, handle(func(ctx context.Context, c commands.RateLocationCommand) (interface{}, error) {
			return svc.Locations.Rate(ctx, c.ID, c.Value)
		})},

		// Routes
		{commands.CreateRouteCommand{}, handle(func(ctx context.Context, c commands.CreateRouteCommand) (interface{}, error) {
			return svc.Routes.Create(ctx, c.UserID, c.Details())
		})},
		{commands.UpdateRouteCommand{}, handle(func(ctx context.Context, c commands.UpdateRouteCommand) (interface{}, error) {
			return svc.Routes.Update(ctx, c.UserID, c.ID, c.Details())
		})},
		{commands.DeleteRouteCommand{}, handle(func(ctx context.Context, c commands.DeleteRouteCommand) (interface{}, error) {
			return nil, svc.Routes.Delete(ctx, c.UserID, c.ID)
		})},

		// Diaries
		{commands.CreateDiaryCommand{}, handle(func(ctx context.Context, c commands.CreateDiaryCommand) (interface{}, error) {
			return svc.Diaries.Create(ctx, c.UserID, c.Details())
		})},
		{commands.UpdateDiaryCommand{}, handle(func(ctx context.Context, c commands.UpdateDiaryCommand) (interface{}, error) {
			return svc.Diaries.Update(ctx, c.UserID, c.ID, c.Details())
		})},
		{commands.DeleteDiaryCommand{}, handle(func(ctx context.Context, c commands.DeleteDiaryCommand) (interface{}, error) {
			return nil, svc.Diaries.Delete(ctx, c.UserID, c.ID)
		})},
		{commands.LikeDiaryCommand{}, handle(func(ctx context.Context, c commands.LikeDiaryCommand) (interface{}, error) {
			return svc.Diaries.Like(ctx, c.UserID, c.ID)
		})},

		// Favorites
		{commands.AddFavoriteCommand{}, handle(func(ctx context.Context, c commands.AddFavoriteCommand) (interface{}, error) {
			return svc.Favorites.Add(ctx, c.UserID, c.Target)
		})},
		{commands.RemoveFavoriteCommand{}, handle(func(ctx context.Context, c commands.RemoveFavoriteCommand) (interface{}, error) {
			return nil, svc.Favorites.Remove(ctx, c.UserID, c.Target)
		})},
	}

	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}

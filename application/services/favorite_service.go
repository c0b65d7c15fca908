package services

import (
	"context"

	"go.uber.org/zap"

	"tj-backend/application/ports"
	"tj-backend/domain/config"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/errors"
)

// FavoriteService manages user favorites over locations, diaries and routes
type FavoriteService struct {
	repos  ports.Repositories
	cache  ports.CacheCoordinator
	cfg    *config.DomainConfig
	logger *zap.Logger
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(repos ports.Repositories, cache ports.CacheCoordinator, cfg *config.DomainConfig, logger *zap.Logger) *FavoriteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FavoriteService{repos: repos, cache: cache, cfg: cfg, logger: logger}
}

// Add marks target as a favorite of userID. The target must exist.
func (s *FavoriteService) Add(ctx context.Context, userID valueobjects.UserID, target valueobjects.FavoriteTarget) (*entities.Favorite, error) {
	if err := s.exists(ctx, target); err != nil {
		return nil, err
	}
	fav := entities.NewFavorite(userID, target)
	if err := s.repos.Favorites.Add(ctx, fav); err != nil {
		return nil, errors.Wrap(errors.FromStore("favorite", err), "add favorite")
	}
	s.cache.Invalidate(ports.NamespaceFavorites)

	s.logger.Debug("Favorite added",
		zap.Int64("user_id", int64(userID)),
		zap.Stringer("target", target),
	)
	return fav, nil
}

func (s *FavoriteService) exists(ctx context.Context, target valueobjects.FavoriteTarget) error {
	var err error
	switch t := target.(type) {
	case valueobjects.LocationTarget:
		_, err = s.repos.Locations.GetByID(ctx, t.ID)
		err = errors.FromStore("location", err)
	case valueobjects.DiaryTarget:
		_, err = s.repos.Diaries.GetByID(ctx, t.ID)
		err = errors.FromStore("diary", err)
	case valueobjects.RouteTarget:
		_, err = s.repos.Routes.GetByID(ctx, t.ID)
		err = errors.FromStore("route", err)
	default:
		err = errors.NewValidationError("unsupported favorite target")
	}
	return err
}

// Remove unmarks a favorite. Removing a missing favorite succeeds.
func (s *FavoriteService) Remove(ctx context.Context, userID valueobjects.UserID, target valueobjects.FavoriteTarget) error {
	if err := s.repos.Favorites.Remove(ctx, userID, target); err != nil {
		return errors.Wrap(errors.FromStore("favorite", err), "remove favorite")
	}
	s.cache.Invalidate(ports.NamespaceFavorites)
	return nil
}

// List returns a user's favorites, newest first
func (s *FavoriteService) List(ctx context.Context, userID valueobjects.UserID) ([]*entities.Favorite, error) {
	key := ports.NewCacheKey("favorites", []ports.CacheNamespace{ports.NamespaceFavorites}, userID)
	return cached(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) ([]*entities.Favorite, error) {
		favs, err := s.repos.Favorites.ListByUser(ctx, userID)
		return favs, errors.FromStore("favorite", err)
	})
}

package services

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"tj-backend/application/ports"
	"tj-backend/domain/config"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/validators"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/domain/routing"
	"tj-backend/pkg/errors"
)

// RouteService manages declared routes and answers route queries
type RouteService struct {
	repo      ports.RouteRepository
	diaries   ports.DiaryRepository
	favorites ports.FavoriteRepository
	discovery *DiscoveryService
	cache     ports.CacheCoordinator
	validator *validators.TravelValidator
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewRouteService creates a new route service
func NewRouteService(
	repos ports.Repositories,
	discovery *DiscoveryService,
	cache ports.CacheCoordinator,
	validator *validators.TravelValidator,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *RouteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RouteService{
		repo:      repos.Routes,
		diaries:   repos.Diaries,
		favorites: repos.Favorites,
		discovery: discovery,
		cache:     cache,
		validator: validator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Create validates and stores a new route owned by userID
func (s *RouteService) Create(ctx context.Context, userID valueobjects.UserID, details entities.RouteDetails) (*entities.Route, error) {
	route := entities.NewRoute(userID, details)
	unlock := s.discovery.lockLocations(route.Locations()...)
	defer unlock()

	if err := s.check(route); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, route); err != nil {
		return nil, errors.Wrap(errors.FromStore("route", err), "create route")
	}
	if err := s.discovery.OnRouteChanged(ctx, route); err != nil {
		if derr := s.repo.Delete(ctx, route.ID); derr != nil {
			s.logger.Error("Failed to roll back route",
				zap.Int64("route_id", int64(route.ID)),
				zap.NamedError("cause", err),
				zap.Error(derr),
			)
		}
		return nil, err
	}

	s.logger.Info("Route created",
		zap.Int64("route_id", int64(route.ID)),
		zap.Int64("start", int64(route.StartID)),
		zap.Int64("end", int64(route.EndID)),
	)
	return route, nil
}

// check validates the fields and that every referenced location exists.
// Callers hold the location locks of route.
func (s *RouteService) check(route *entities.Route) error {
	if err := s.validator.ValidateRoute(route); err != nil {
		return err
	}
	for _, id := range route.Locations() {
		if !s.discovery.HasLocation(id) {
			return errors.NewNotFoundErrorID("location", id)
		}
	}
	return nil
}

// Get returns a route. Private routes are only visible to their owner.
func (s *RouteService) Get(ctx context.Context, requester valueobjects.UserID, id valueobjects.RouteID) (*entities.Route, error) {
	key := ports.NewCacheKey("route", []ports.CacheNamespace{ports.NamespaceRoutes}, id)
	route, err := cached(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) (*entities.Route, error) {
		route, err := s.repo.GetByID(ctx, id)
		return route, errors.FromStore("route", err)
	})
	if err != nil {
		return nil, err
	}
	if !route.Public && route.UserID != requester {
		return nil, errors.NewForbiddenError("route is private")
	}
	return route, nil
}

// Duration returns the estimated duration of a visible route
func (s *RouteService) Duration(ctx context.Context, requester valueobjects.UserID, id valueobjects.RouteID) (time.Duration, error) {
	route, err := s.Get(ctx, requester, id)
	if err != nil {
		return 0, err
	}
	return route.Duration, nil
}

// Update replaces a route's editable fields. Only the owner may update it.
// If the graph rejects the new version the stored route is restored.
func (s *RouteService) Update(ctx context.Context, userID valueobjects.UserID, id valueobjects.RouteID, details entities.RouteDetails) (*entities.Route, error) {
	unlockRoute := s.discovery.lockRoute(id)
	defer unlockRoute()

	route, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	prev := route.Clone()
	route.Update(details)

	unlock := s.discovery.lockLocations(append(prev.Locations(), route.Locations()...)...)
	defer unlock()

	if err := s.check(route); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, route); err != nil {
		return nil, errors.Wrap(errors.FromStore("route", err), "update route")
	}
	if err := s.discovery.OnRouteChanged(ctx, route); err != nil {
		if rerr := s.repo.Update(ctx, prev); rerr != nil {
			s.logger.Error("Failed to restore route",
				zap.Int64("route_id", int64(id)),
				zap.NamedError("cause", err),
				zap.Error(rerr),
			)
		}
		return nil, err
	}
	return route, nil
}

// Delete removes a route. Only the owner may delete it.
func (s *RouteService) Delete(ctx context.Context, userID valueobjects.UserID, id valueobjects.RouteID) error {
	unlock := s.discovery.lockRoute(id)
	defer unlock()

	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.FromStore("route", err), "delete route")
	}
	s.discovery.OnRouteDeleted(ctx, id)

	s.logger.Info("Route deleted", zap.Int64("route_id", int64(id)))
	return nil
}

func (s *RouteService) owned(ctx context.Context, userID valueobjects.UserID, id valueobjects.RouteID) (*entities.Route, error) {
	route, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.FromStore("route", err)
	}
	if route.UserID != userID {
		return nil, errors.NewForbiddenError("route belongs to another user")
	}
	return route, nil
}

// ByUser lists a user's routes. Other users only see the public ones.
func (s *RouteService) ByUser(ctx context.Context, requester, userID valueobjects.UserID, req PageRequest) (PageResult[*entities.Route], error) {
	return s.list(ctx, ports.RouteFilter{UserID: userID, PublicOnly: requester != userID}, req)
}

// ByStart lists public routes leaving a location
func (s *RouteService) ByStart(ctx context.Context, id valueobjects.LocationID, req PageRequest) (PageResult[*entities.Route], error) {
	return s.list(ctx, ports.RouteFilter{StartID: id, PublicOnly: true}, req)
}

// ByEnd lists public routes arriving at a location
func (s *RouteService) ByEnd(ctx context.Context, id valueobjects.LocationID, req PageRequest) (PageResult[*entities.Route], error) {
	return s.list(ctx, ports.RouteFilter{EndID: id, PublicOnly: true}, req)
}

func (s *RouteService) list(ctx context.Context, filter ports.RouteFilter, req PageRequest) (PageResult[*entities.Route], error) {
	page, req, err := resolvePage(req, s.cfg)
	if err != nil {
		return PageResult[*entities.Route]{}, err
	}
	filter.Page = page

	key := ports.NewCacheKey("routes", []ports.CacheNamespace{ports.NamespaceRoutes},
		filter.UserID, filter.StartID, filter.EndID, filter.PublicOnly, page.Offset, page.Limit)
	return cached(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) (PageResult[*entities.Route], error) {
		items, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return PageResult[*entities.Route]{}, errors.FromStore("route", err)
		}
		return PageResult[*entities.Route]{Items: items, Page: req.Page, PageSize: req.PageSize, Total: total}, nil
	})
}

// Popular returns the newest public routes
func (s *RouteService) Popular(ctx context.Context, limit int) ([]*entities.Route, error) {
	limit, err := resolveLimit(limit, s.cfg)
	if err != nil {
		return nil, err
	}
	key := ports.NewCacheKey("routes.popular", []ports.CacheNamespace{ports.NamespaceRoutes}, limit)
	return cached(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) ([]*entities.Route, error) {
		routes, err := s.repo.Popular(ctx, limit)
		return routes, errors.FromStore("route", err)
	})
}

// Optimal returns the fastest itineraries between two locations over the
// routes requester may see. A negative maxStops selects the configured
// default.
func (s *RouteService) Optimal(ctx context.Context, requester valueobjects.UserID, start, end valueobjects.LocationID, maxStops int) ([]routing.PathResult, error) {
	if maxStops < 0 {
		maxStops = s.cfg.DefaultMaxStops
	}
	return s.discovery.OptimalRoutes(ctx, requester, start, end, maxStops)
}

// Recommended returns public routes starting where the user has been: the
// locations of their diaries and their favorite locations. Shorter routes
// come first. Users without history get no recommendations.
func (s *RouteService) Recommended(ctx context.Context, userID valueobjects.UserID, limit int) ([]*entities.Route, error) {
	limit, err := resolveLimit(limit, s.cfg)
	if err != nil {
		return nil, err
	}

	key := ports.NewCacheKey("routes.recommended",
		[]ports.CacheNamespace{ports.NamespaceRoutes, ports.NamespaceDiaries, ports.NamespaceFavorites},
		userID, limit)
	return cached(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) ([]*entities.Route, error) {
		starts, err := s.visited(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(starts) == 0 {
			return []*entities.Route{}, nil
		}

		routes, _, err := s.repo.List(ctx, ports.RouteFilter{StartIDs: starts, PublicOnly: true})
		if err != nil {
			return nil, errors.FromStore("route", err)
		}
		sort.SliceStable(routes, func(i, j int) bool {
			if routes[i].Duration != routes[j].Duration {
				return routes[i].Duration < routes[j].Duration
			}
			return routes[i].ID < routes[j].ID
		})
		if len(routes) > limit {
			routes = routes[:limit]
		}
		return routes, nil
	})
}

func (s *RouteService) visited(ctx context.Context, userID valueobjects.UserID) ([]valueobjects.LocationID, error) {
	seen := make(map[valueobjects.LocationID]struct{})

	diaries, _, err := s.diaries.List(ctx, ports.DiaryFilter{UserID: userID})
	if err != nil {
		return nil, errors.FromStore("diary", err)
	}
	for _, d := range diaries {
		seen[d.LocationID] = struct{}{}
	}

	favs, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.FromStore("favorite", err)
	}
	for _, f := range favs {
		if t, ok := f.Target.(valueobjects.LocationTarget); ok {
			seen[t.ID] = struct{}{}
		}
	}

	ids := make([]valueobjects.LocationID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tj-backend/application/ports"
	"tj-backend/domain/config"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/domain/events"
	"tj-backend/domain/rating"
	"tj-backend/domain/routing"
	"tj-backend/domain/spatial"
	"tj-backend/pkg/errors"
	"tj-backend/pkg/observability"
)

// DiscoveryService owns the derived views over locations and routes: the
// spatial index, the route graph, the rating counters and the cache in front
// of them. The store of record calls the On* hooks after every successful
// mutation and before returning to its own caller.
type DiscoveryService struct {
	index     *spatial.Index
	graph     *routing.Graph
	optimizer *routing.Optimizer
	ratings   *rating.Aggregator
	cache     ports.CacheCoordinator
	locations ports.LocationRepository
	routes    ports.RouteRepository
	publisher ports.EventPublisher
	cfg       *config.DomainConfig
	metrics   *observability.Collector
	tracer    *observability.Tracer
	logger    *zap.Logger
	now       func() time.Time

	// Writers hold these across the store call and the matching On* hook.
	// Route locks are taken before location locks.
	locationLocks *keyedLocks[valueobjects.LocationID]
	routeLocks    *keyedLocks[valueobjects.RouteID]
}

// NewDiscoveryService creates a discovery service with empty structures.
// Call Hydrate before serving traffic.
func NewDiscoveryService(
	repos ports.Repositories,
	cache ports.CacheCoordinator,
	publisher ports.EventPublisher,
	cfg *config.DomainConfig,
	metrics *observability.Collector,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *DiscoveryService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	graph := routing.NewGraph()
	return &DiscoveryService{
		index: spatial.NewIndex(),
		graph: graph,
		optimizer: routing.NewOptimizer(graph, routing.OptimizerOptions{
			MaxExpandedStates: cfg.MaxExpandedStates,
			MaxResults:        cfg.MaxOptimalRoutes,
		}),
		ratings:   rating.NewAggregator(cfg.MinRating, cfg.MaxRating),
		cache:     cache,
		locations: repos.Locations,
		routes:    repos.Routes,
		publisher: publisher,
		cfg:       cfg,
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger,
		now:       time.Now,

		locationLocks: newKeyedLocks[valueobjects.LocationID](),
		routeLocks:    newKeyedLocks[valueobjects.RouteID](),
	}
}

// lockLocations serializes writers touching any of ids
func (s *DiscoveryService) lockLocations(ids ...valueobjects.LocationID) func() {
	return s.locationLocks.lock(ids...)
}

// lockRoute serializes writers of one route
func (s *DiscoveryService) lockRoute(id valueobjects.RouteID) func() {
	return s.routeLocks.lock(id)
}

// Hydrate loads every location and route from the store into the in-memory
// structures. Routes the graph rejects are logged and skipped.
func (s *DiscoveryService) Hydrate(ctx context.Context) error {
	locs, err := s.locations.ListAll(ctx)
	if err != nil {
		return errors.Wrap(errors.FromStore("location", err), "hydrate locations")
	}
	for _, loc := range locs {
		if err := s.index.Upsert(loc.ID, loc.Coordinates.Latitude, loc.Coordinates.Longitude); err != nil {
			s.logger.Warn("Skipping location with invalid coordinates",
				zap.Int64("location_id", int64(loc.ID)),
				zap.Error(err),
			)
			continue
		}
		s.graph.AddNode(loc.ID)
		s.ratings.Seed(loc.ID, rating.Stats{Rating: loc.Rating, Visits: loc.VisitCount})
	}

	routes, err := s.routes.ListAll(ctx)
	if err != nil {
		return errors.Wrap(errors.FromStore("route", err), "hydrate routes")
	}
	skipped := 0
	for _, r := range routes {
		if err := s.graph.UpdateEdge(r.ID, edgeOf(r)); err != nil {
			skipped++
			s.logger.Warn("Skipping route",
				zap.Int64("route_id", int64(r.ID)),
				zap.Error(err),
			)
		}
	}

	nodes, edges := s.graph.Size()
	s.logger.Info("Discovery structures hydrated",
		zap.Int("locations", nodes),
		zap.Int("routes", edges),
		zap.Int("skipped_routes", skipped),
	)
	return nil
}

func edgeOf(r *entities.Route) routing.Edge {
	return routing.Edge{
		ID:       r.ID,
		From:     r.StartID,
		To:       r.EndID,
		Stops:    r.Stops,
		Duration: r.Duration,
		Owner:    r.UserID,
		Public:   r.Public,
	}
}

// NearbyLocations returns the locations within radiusMeters of (lat, lon),
// nearest first.
func (s *DiscoveryService) NearbyLocations(ctx context.Context, lat, lon, radiusMeters float64) ([]spatial.Neighbor, error) {
	if err := valueobjects.ValidateLatLon(lat, lon); err != nil {
		return nil, err
	}
	if radiusMeters > s.cfg.MaxNearbyRadiusMeters {
		radiusMeters = s.cfg.MaxNearbyRadiusMeters
	}

	key := ports.NewCacheKey("nearby", []ports.CacheNamespace{ports.NamespaceLocations}, lat, lon, radiusMeters)
	return cached(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) ([]spatial.Neighbor, error) {
		var out []spatial.Neighbor
		err := s.tracer.TraceFunction(ctx, "nearby_locations", func(ctx context.Context) error {
			var err error
			out, err = s.index.Nearby(lat, lon, radiusMeters)
			s.tracer.AddMetadata(ctx, "results", len(out))
			return err
		})
		return out, err
	})
}

// OptimalRoutes returns up to the configured number of fastest itineraries
// from start to end passing through at most maxStops intermediate locations.
// A negative maxStops allows direct routes only. Only public routes and the
// viewer's own routes are travelled; a zero viewer sees public routes only.
func (s *DiscoveryService) OptimalRoutes(ctx context.Context, viewer valueobjects.UserID, start, end valueobjects.LocationID, maxStops int) ([]routing.PathResult, error) {
	if maxStops < 0 {
		maxStops = 0
	}
	if maxStops > s.cfg.MaxStopsLimit {
		return nil, errors.NewValidationErrorf("max_stops must be at most %d", s.cfg.MaxStopsLimit)
	}

	key := ports.NewCacheKey("optimal_routes",
		[]ports.CacheNamespace{ports.NamespaceRoutes, ports.NamespaceLocations},
		viewer, start, end, maxStops)
	visible := func(e *routing.Edge) bool {
		return e.Public || (viewer > 0 && e.Owner == viewer)
	}
	return cached(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) ([]routing.PathResult, error) {
		var out []routing.PathResult
		err := s.tracer.TraceFunction(ctx, "optimal_routes", func(ctx context.Context) error {
			results, stats, err := s.optimizer.FindRoutes(ctx, start, end, maxStops, visible)
			if err != nil {
				return err
			}
			s.metrics.RecordRouteSearch(stats.Expanded, stats.Truncated)
			s.tracer.AddMetadata(ctx, "expanded", stats.Expanded)
			if stats.Truncated {
				s.logger.Warn("Route search hit the expanded state cap",
					zap.Int64("start", int64(start)),
					zap.Int64("end", int64(end)),
					zap.Int("max_stops", maxStops),
					zap.Int("expanded", stats.Expanded),
				)
			}
			out = results
			return nil
		})
		return out, err
	})
}

// Rating returns the current rating aggregate of a location
func (s *DiscoveryService) Rating(ctx context.Context, id valueobjects.LocationID) (valueobjects.RatingAggregate, error) {
	key := ports.NewCacheKey("rating", []ports.CacheNamespace{ports.NamespaceRatings}, id)
	return cached(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) (valueobjects.RatingAggregate, error) {
		stats, err := s.ratings.Get(id)
		return stats.Rating, err
	})
}

// ApplyRating folds value into the location's rating and persists the new
// aggregate. Concurrent ratings of the same location are serialized.
func (s *DiscoveryService) ApplyRating(ctx context.Context, id valueobjects.LocationID, value float64) (valueobjects.RatingAggregate, error) {
	agg, err := s.ratings.ApplyRating(id, value, func(next valueobjects.RatingAggregate) error {
		return s.storeErr("locations.update_rating", errors.FromStore("location", s.locations.UpdateRating(ctx, id, next)))
	})
	if err != nil {
		return valueobjects.RatingAggregate{}, err
	}

	s.invalidate(ports.NamespaceRatings, ports.NamespaceLocations)
	s.publish(ctx, events.NewLocationRated(id, value, agg, s.now()))
	return agg, nil
}

// RecordVisit increments and persists the visit counter of a location
func (s *DiscoveryService) RecordVisit(ctx context.Context, id valueobjects.LocationID) (int64, error) {
	visits, err := s.ratings.RecordVisit(id, func(next int64) error {
		return s.storeErr("locations.update_visits", errors.FromStore("location", s.locations.UpdateVisitCount(ctx, id, next)))
	})
	if err != nil {
		return 0, err
	}

	s.invalidate(ports.NamespaceLocations)
	s.publish(ctx, events.NewLocationVisited(id, visits, s.now()))
	return visits, nil
}

// RoutesReferencing returns the routes that start, end or stop at id
func (s *DiscoveryService) RoutesReferencing(id valueobjects.LocationID) []valueobjects.RouteID {
	return s.graph.ReferencingEdges(id)
}

// HasLocation reports whether the graph knows id
func (s *DiscoveryService) HasLocation(id valueobjects.LocationID) bool {
	return s.graph.HasNode(id)
}

// OnLocationChanged mirrors a created or updated location
func (s *DiscoveryService) OnLocationChanged(ctx context.Context, loc *entities.Location) error {
	created := !s.graph.HasNode(loc.ID)
	if err := s.index.Upsert(loc.ID, loc.Coordinates.Latitude, loc.Coordinates.Longitude); err != nil {
		return err
	}
	s.graph.AddNode(loc.ID)
	s.ratings.Track(loc.ID)

	s.logger.Debug("Location changed",
		zap.Int64("location_id", int64(loc.ID)),
		zap.Bool("created", created),
	)
	s.invalidate(ports.NamespaceLocations)
	s.publish(ctx, events.NewLocationChanged(loc.ID, loc.Coordinates, created, s.now()))
	return nil
}

// OnLocationDeleted forgets a location. Routes still referencing it are
// dropped from the graph as well.
func (s *DiscoveryService) OnLocationDeleted(ctx context.Context, id valueobjects.LocationID) {
	s.index.Remove(id)
	dropped := s.graph.RemoveNode(id)
	s.ratings.Remove(id)

	s.logger.Debug("Location deleted",
		zap.Int64("location_id", int64(id)),
		zap.Int("dropped_routes", len(dropped)),
	)
	if len(dropped) > 0 {
		s.invalidate(ports.NamespaceRoutes)
	}
	s.invalidate(ports.NamespaceLocations, ports.NamespaceRatings)
	s.publish(ctx, events.NewLocationDeleted(id, s.now()))
}

// OnRouteChanged mirrors a created or updated route. It fails with NOT_FOUND
// when the route references a location the graph does not know.
func (s *DiscoveryService) OnRouteChanged(ctx context.Context, r *entities.Route) error {
	_, existed := s.graph.Edge(r.ID)
	if err := s.graph.UpdateEdge(r.ID, edgeOf(r)); err != nil {
		return err
	}

	s.logger.Debug("Route changed",
		zap.Int64("route_id", int64(r.ID)),
		zap.Bool("created", !existed),
	)
	s.invalidate(ports.NamespaceRoutes)
	s.publish(ctx, events.NewRouteChanged(r.ID, r.StartID, r.EndID, !existed, s.now()))
	return nil
}

// OnRouteDeleted forgets a route. Unknown ids are ignored.
func (s *DiscoveryService) OnRouteDeleted(ctx context.Context, id valueobjects.RouteID) {
	removed := s.graph.RemoveEdge(id)

	s.logger.Debug("Route deleted",
		zap.Int64("route_id", int64(id)),
		zap.Bool("removed", removed),
	)
	s.invalidate(ports.NamespaceRoutes)
	s.publish(ctx, events.NewRouteDeleted(id, s.now()))
}

func (s *DiscoveryService) invalidate(namespaces ...ports.CacheNamespace) {
	for _, ns := range namespaces {
		s.cache.Invalidate(ns)
	}
}

func (s *DiscoveryService) publish(ctx context.Context, event events.DomainEvent) {
	publish(ctx, s.publisher, s.logger, event)
}

func (s *DiscoveryService) storeErr(operation string, err error) error {
	if errors.IsUnavailable(err) {
		s.metrics.RecordStoreFailure(operation)
		s.logger.Error("Store call failed", zap.String("operation", operation), zap.Error(err))
	}
	return err
}

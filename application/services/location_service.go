package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"tj-backend/application/ports"
	"tj-backend/domain/config"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/validators"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/errors"
)

// LocationQuery narrows a public location listing
type LocationQuery struct {
	Text     string
	Country  string
	City     string
	Category string
	Tags     []string
}

func (q LocationQuery) filter(page ports.Page) ports.LocationFilter {
	return ports.LocationFilter{
		Text:       q.Text,
		Country:    q.Country,
		City:       q.City,
		Category:   q.Category,
		AnyTags:    entities.NormalizeTags(q.Tags),
		PublicOnly: true,
		Page:       page,
	}
}

// NearbyLocation is a location with its distance from the query point
type NearbyLocation struct {
	Location       *entities.Location `json:"location"`
	DistanceMeters float64            `json:"distance_meters"`
}

// NearbyResult is the nearest Limit matches of a proximity search.
// Truncated reports that more locations lay within the radius.
type NearbyResult struct {
	Items     []NearbyLocation
	Limit     int
	Truncated bool
}

// LocationService manages the location catalogue
type LocationService struct {
	repo      ports.LocationRepository
	discovery *DiscoveryService
	cache     ports.CacheCoordinator
	validator *validators.TravelValidator
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewLocationService creates a new location service
func NewLocationService(
	repos ports.Repositories,
	discovery *DiscoveryService,
	cache ports.CacheCoordinator,
	validator *validators.TravelValidator,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *LocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationService{
		repo:      repos.Locations,
		discovery: discovery,
		cache:     cache,
		validator: validator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Create validates and stores a new location
func (s *LocationService) Create(ctx context.Context, details entities.LocationDetails) (*entities.Location, error) {
	loc, err := entities.NewLocation(details)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateLocation(loc); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, loc); err != nil {
		return nil, errors.Wrap(errors.FromStore("location", err), "create location")
	}
	if err := s.discovery.OnLocationChanged(ctx, loc); err != nil {
		s.compensate(ctx, loc.ID, err)
		return nil, err
	}

	s.logger.Info("Location created",
		zap.Int64("location_id", int64(loc.ID)),
		zap.String("name", loc.Name),
	)
	return loc, nil
}

// compensate removes a location the in-memory structures refused
func (s *LocationService) compensate(ctx context.Context, id valueobjects.LocationID, cause error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to roll back location",
			zap.Int64("location_id", int64(id)),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
	}
}

// Get returns a location by id
func (s *LocationService) Get(ctx context.Context, id valueobjects.LocationID) (*entities.Location, error) {
	key := ports.NewCacheKey("location", []ports.CacheNamespace{ports.NamespaceLocations}, id)
	return cached(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) (*entities.Location, error) {
		loc, err := s.repo.GetByID(ctx, id)
		return loc, errors.FromStore("location", err)
	})
}

// List returns one page of public locations matching q
func (s *LocationService) List(ctx context.Context, q LocationQuery, req PageRequest) (PageResult[*entities.Location], error) {
	page, req, err := resolvePage(req, s.cfg)
	if err != nil {
		return PageResult[*entities.Location]{}, err
	}

	filter := q.filter(page)
	key := ports.NewCacheKey("locations", []ports.CacheNamespace{ports.NamespaceLocations},
		strings.ToLower(strings.TrimSpace(q.Text)), strings.ToLower(q.Country), strings.ToLower(q.City),
		strings.ToLower(q.Category), strings.Join(filter.AnyTags, ","), page.Offset, page.Limit)
	return cached(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) (PageResult[*entities.Location], error) {
		items, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return PageResult[*entities.Location]{}, errors.FromStore("location", err)
		}
		return PageResult[*entities.Location]{Items: items, Page: req.Page, PageSize: req.PageSize, Total: total}, nil
	})
}

// Search matches text against names and descriptions
func (s *LocationService) Search(ctx context.Context, text string, req PageRequest) (PageResult[*entities.Location], error) {
	if strings.TrimSpace(text) == "" {
		return PageResult[*entities.Location]{}, errors.NewValidationError("search text is required")
	}
	return s.List(ctx, LocationQuery{Text: text}, req)
}

// Popular returns the most visited public locations
func (s *LocationService) Popular(ctx context.Context, limit int) ([]*entities.Location, error) {
	limit, err := resolveLimit(limit, s.cfg)
	if err != nil {
		return nil, err
	}
	key := ports.NewCacheKey("locations.popular", []ports.CacheNamespace{ports.NamespaceLocations}, limit)
	return cached(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) ([]*entities.Location, error) {
		locs, err := s.repo.Popular(ctx, limit)
		return locs, errors.FromStore("location", err)
	})
}

// Nearby returns up to limit locations around (lat, lon), nearest first. A
// limit outside (0, MaxNearbyResults] selects MaxNearbyResults.
func (s *LocationService) Nearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) (NearbyResult, error) {
	if limit <= 0 || limit > s.cfg.MaxNearbyResults {
		limit = s.cfg.MaxNearbyResults
	}
	neighbors, err := s.discovery.NearbyLocations(ctx, lat, lon, radiusMeters)
	if err != nil {
		return NearbyResult{}, err
	}

	res := NearbyResult{Items: make([]NearbyLocation, 0, min(limit, len(neighbors))), Limit: limit}
	for _, n := range neighbors {
		loc, err := s.Get(ctx, n.ID)
		if errors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return NearbyResult{}, err
		}
		if len(res.Items) == limit {
			res.Truncated = true
			break
		}
		res.Items = append(res.Items, NearbyLocation{Location: loc, DistanceMeters: n.DistanceMeters})
	}
	return res, nil
}

// Update replaces the editable fields of a location
func (s *LocationService) Update(ctx context.Context, id valueobjects.LocationID, details entities.LocationDetails) (*entities.Location, error) {
	return s.modify(ctx, id, func(loc *entities.Location) (bool, error) {
		return true, loc.Update(details)
	})
}

// modify applies edit to the stored location and mirrors the result while
// holding the location's write lock. edit reports whether anything changed.
func (s *LocationService) modify(ctx context.Context, id valueobjects.LocationID, edit func(*entities.Location) (bool, error)) (*entities.Location, error) {
	unlock := s.discovery.lockLocations(id)
	defer unlock()

	loc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.FromStore("location", err)
	}
	prev := loc.Clone()
	changed, err := edit(loc)
	if err != nil {
		return nil, err
	}
	if !changed {
		return loc, nil
	}
	if err := s.validator.ValidateLocation(loc); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, loc); err != nil {
		return nil, errors.Wrap(errors.FromStore("location", err), "update location")
	}
	if err := s.discovery.OnLocationChanged(ctx, loc); err != nil {
		if rerr := s.repo.Update(ctx, prev); rerr != nil {
			s.logger.Error("Failed to restore location",
				zap.Int64("location_id", int64(id)),
				zap.NamedError("cause", err),
				zap.Error(rerr),
			)
		}
		return nil, err
	}
	return loc, nil
}

// Delete removes a location that no route references
func (s *LocationService) Delete(ctx context.Context, id valueobjects.LocationID) error {
	unlock := s.discovery.lockLocations(id)
	defer unlock()

	if refs := s.discovery.RoutesReferencing(id); len(refs) > 0 {
		return errors.NewConflictError("location is used by existing routes").
			WithDetail("location_id", id).
			WithDetail("routes", refs)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.FromStore("location", err), "delete location")
	}
	s.discovery.OnLocationDeleted(ctx, id)

	s.logger.Info("Location deleted", zap.Int64("location_id", int64(id)))
	return nil
}

// AddImage attaches an image URL to a location
func (s *LocationService) AddImage(ctx context.Context, id valueobjects.LocationID, url string) (*entities.Location, error) {
	return s.editImages(ctx, id, url, (*entities.Location).AddImage)
}

// RemoveImage detaches an image URL from a location
func (s *LocationService) RemoveImage(ctx context.Context, id valueobjects.LocationID, url string) (*entities.Location, error) {
	return s.editImages(ctx, id, url, (*entities.Location).RemoveImage)
}

func (s *LocationService) editImages(ctx context.Context, id valueobjects.LocationID, url string, edit func(*entities.Location, string) bool) (*entities.Location, error) {
	url = strings.TrimSpace(url)
	if err := s.validator.ValidateImageURL(url); err != nil {
		return nil, err
	}
	return s.modify(ctx, id, func(loc *entities.Location) (bool, error) {
		return edit(loc, url), nil
	})
}

// RecordVisit counts one visit to a location
func (s *LocationService) RecordVisit(ctx context.Context, id valueobjects.LocationID) (int64, error) {
	return s.discovery.RecordVisit(ctx, id)
}

// Rate applies a rating to a location
func (s *LocationService) Rate(ctx context.Context, id valueobjects.LocationID, value float64) (valueobjects.RatingAggregate, error) {
	return s.discovery.ApplyRating(ctx, id, value)
}

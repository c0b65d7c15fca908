package memory

import (
	"context"
	"sort"
	"sync"

	"tj-backend/application/ports"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/errors"
)

// RouteRepository is an in-memory ports.RouteRepository
type RouteRepository struct {
	mu     sync.RWMutex
	items  map[valueobjects.RouteID]*entities.Route
	nextID valueobjects.RouteID
}

// NewRouteRepository creates an empty repository
func NewRouteRepository() *RouteRepository {
	return &RouteRepository{items: make(map[valueobjects.RouteID]*entities.Route)}
}

func (r *RouteRepository) Create(ctx context.Context, route *entities.Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	route.ID = r.nextID
	r.items[route.ID] = route.Clone()
	return nil
}

func (r *RouteRepository) Update(ctx context.Context, route *entities.Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[route.ID]; !ok {
		return errors.NewNotFoundErrorID("route", route.ID)
	}
	r.items[route.ID] = route.Clone()
	return nil
}

func (r *RouteRepository) GetByID(ctx context.Context, id valueobjects.RouteID) (*entities.Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	route, ok := r.items[id]
	if !ok {
		return nil, errors.NewNotFoundErrorID("route", id)
	}
	return route.Clone(), nil
}

func (r *RouteRepository) Delete(ctx context.Context, id valueobjects.RouteID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return errors.NewNotFoundErrorID("route", id)
	}
	delete(r.items, id)
	return nil
}

// List returns matches in id order
func (r *RouteRepository) List(ctx context.Context, filter ports.RouteFilter) ([]*entities.Route, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*entities.Route
	for _, id := range sortedKeys(r.items) {
		route := r.items[id]
		if matchRoute(route, filter) {
			matches = append(matches, route)
		}
	}

	page := window(matches, filter.Page)
	out := make([]*entities.Route, len(page))
	for i, route := range page {
		out[i] = route.Clone()
	}
	return out, len(matches), nil
}

func matchRoute(route *entities.Route, f ports.RouteFilter) bool {
	if f.PublicOnly && !route.Public {
		return false
	}
	if !f.UserID.IsZero() && route.UserID != f.UserID {
		return false
	}
	if !f.StartID.IsZero() && route.StartID != f.StartID {
		return false
	}
	if !f.EndID.IsZero() && route.EndID != f.EndID {
		return false
	}
	if len(f.StartIDs) > 0 {
		for _, id := range f.StartIDs {
			if route.StartID == id {
				return true
			}
		}
		return false
	}
	return true
}

func (r *RouteRepository) ListAll(ctx context.Context) ([]*entities.Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Route, 0, len(r.items))
	for _, id := range sortedKeys(r.items) {
		out = append(out, r.items[id].Clone())
	}
	return out, nil
}

// Popular orders public routes newest first
func (r *RouteRepository) Popular(ctx context.Context, limit int) ([]*entities.Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entities.Route
	for _, route := range r.items {
		if route.Public {
			out = append(out, route.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return limitTo(out, limit), nil
}

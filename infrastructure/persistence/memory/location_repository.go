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

// LocationRepository is an in-memory ports.LocationRepository
type LocationRepository struct {
	mu     sync.RWMutex
	items  map[valueobjects.LocationID]*entities.Location
	nextID valueobjects.LocationID
}

// NewLocationRepository creates an empty repository
func NewLocationRepository() *LocationRepository {
	return &LocationRepository{items: make(map[valueobjects.LocationID]*entities.Location)}
}

// Create assigns the next id and stores a copy of loc
func (r *LocationRepository) Create(ctx context.Context, loc *entities.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	loc.ID = r.nextID
	r.items[loc.ID] = loc.Clone()
	return nil
}

// Update writes the editable fields; the counters keep their stored values
func (r *LocationRepository) Update(ctx context.Context, loc *entities.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[loc.ID]
	if !ok {
		return errors.NewNotFoundErrorID("location", loc.ID)
	}
	next := loc.Clone()
	next.VisitCount = current.VisitCount
	next.Rating = current.Rating
	next.CreatedAt = current.CreatedAt
	r.items[loc.ID] = next
	return nil
}

func (r *LocationRepository) GetByID(ctx context.Context, id valueobjects.LocationID) (*entities.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loc, ok := r.items[id]
	if !ok {
		return nil, errors.NewNotFoundErrorID("location", id)
	}
	return loc.Clone(), nil
}

func (r *LocationRepository) Delete(ctx context.Context, id valueobjects.LocationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return errors.NewNotFoundErrorID("location", id)
	}
	delete(r.items, id)
	return nil
}

// List returns matches in id order
func (r *LocationRepository) List(ctx context.Context, filter ports.LocationFilter) ([]*entities.Location, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*entities.Location
	for _, id := range sortedKeys(r.items) {
		loc := r.items[id]
		if matchLocation(loc, filter) {
			matches = append(matches, loc)
		}
	}

	page := window(matches, filter.Page)
	out := make([]*entities.Location, len(page))
	for i, loc := range page {
		out[i] = loc.Clone()
	}
	return out, len(matches), nil
}

func matchLocation(loc *entities.Location, f ports.LocationFilter) bool {
	if f.PublicOnly && !loc.Public {
		return false
	}
	if f.Country != "" && !equalFold(loc.Country, f.Country) {
		return false
	}
	if f.City != "" && !equalFold(loc.City, f.City) {
		return false
	}
	if f.Category != "" && !equalFold(loc.Category, f.Category) {
		return false
	}
	if len(f.AnyTags) > 0 && !loc.HasAnyTag(f.AnyTags) {
		return false
	}
	return loc.Matches(f.Text)
}

func (r *LocationRepository) ListAll(ctx context.Context) ([]*entities.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Location, 0, len(r.items))
	for _, id := range sortedKeys(r.items) {
		out = append(out, r.items[id].Clone())
	}
	return out, nil
}

// Popular orders public locations by visit count, ties by id
func (r *LocationRepository) Popular(ctx context.Context, limit int) ([]*entities.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entities.Location
	for _, loc := range r.items {
		if loc.Public {
			out = append(out, loc.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VisitCount != out[j].VisitCount {
			return out[i].VisitCount > out[j].VisitCount
		}
		return out[i].ID < out[j].ID
	})
	return limitTo(out, limit), nil
}

func (r *LocationRepository) UpdateRating(ctx context.Context, id valueobjects.LocationID, rating valueobjects.RatingAggregate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc, ok := r.items[id]
	if !ok {
		return errors.NewNotFoundErrorID("location", id)
	}
	loc.Rating = rating
	return nil
}

func (r *LocationRepository) UpdateVisitCount(ctx context.Context, id valueobjects.LocationID, visits int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc, ok := r.items[id]
	if !ok {
		return errors.NewNotFoundErrorID("location", id)
	}
	loc.VisitCount = visits
	return nil
}

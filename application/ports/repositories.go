package ports

import (
	"context"

	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/domain/events"
)

// LocationRepository is the store of record for locations.
// Create assigns the id. Update writes the editable fields only; the rating
// and visit counters change through UpdateRating and UpdateVisitCount.
// Update, Delete and the counter writes fail with NOT_FOUND for unknown ids.
type LocationRepository interface {
	Create(ctx context.Context, loc *entities.Location) error
	Update(ctx context.Context, loc *entities.Location) error
	GetByID(ctx context.Context, id valueobjects.LocationID) (*entities.Location, error)
	Delete(ctx context.Context, id valueobjects.LocationID) error

	// List returns one page of matches and the total number of matches
	List(ctx context.Context, filter LocationFilter) ([]*entities.Location, int, error)

	// ListAll returns every location; used to hydrate in-memory structures
	ListAll(ctx context.Context) ([]*entities.Location, error)

	// Popular returns public locations by visit count, most visited first
	Popular(ctx context.Context, limit int) ([]*entities.Location, error)

	UpdateRating(ctx context.Context, id valueobjects.LocationID, rating valueobjects.RatingAggregate) error
	UpdateVisitCount(ctx context.Context, id valueobjects.LocationID, visits int64) error
}

// RouteRepository is the store of record for routes.
type RouteRepository interface {
	Create(ctx context.Context, route *entities.Route) error
	Update(ctx context.Context, route *entities.Route) error
	GetByID(ctx context.Context, id valueobjects.RouteID) (*entities.Route, error)
	Delete(ctx context.Context, id valueobjects.RouteID) error
	List(ctx context.Context, filter RouteFilter) ([]*entities.Route, int, error)
	ListAll(ctx context.Context) ([]*entities.Route, error)

	// Popular returns public routes, most recently created first
	Popular(ctx context.Context, limit int) ([]*entities.Route, error)
}

// DiaryRepository is the store of record for diaries.
type DiaryRepository interface {
	Create(ctx context.Context, diary *entities.Diary) error
	Update(ctx context.Context, diary *entities.Diary) error
	GetByID(ctx context.Context, id valueobjects.DiaryID) (*entities.Diary, error)
	Delete(ctx context.Context, id valueobjects.DiaryID) error
	List(ctx context.Context, filter DiaryFilter) ([]*entities.Diary, int, error)

	// Popular returns public diaries by likes, most liked first
	Popular(ctx context.Context, limit int) ([]*entities.Diary, error)

	// IncrementLikes adds one like and returns the new total
	IncrementLikes(ctx context.Context, id valueobjects.DiaryID) (int64, error)
}

// FavoriteRepository stores user favorites. Add and Remove are idempotent.
type FavoriteRepository interface {
	Add(ctx context.Context, fav *entities.Favorite) error
	Remove(ctx context.Context, userID valueobjects.UserID, target valueobjects.FavoriteTarget) error
	ListByUser(ctx context.Context, userID valueobjects.UserID) ([]*entities.Favorite, error)
}

// Page selects a window of a result set
type Page struct {
	Offset int
	Limit  int
}

// LocationFilter narrows a location listing. Zero-valued fields do not filter.
type LocationFilter struct {
	Text       string
	Country    string
	City       string
	Category   string
	AnyTags    []string
	PublicOnly bool
	Page
}

// RouteFilter narrows a route listing. Zero-valued fields do not filter.
type RouteFilter struct {
	UserID     valueobjects.UserID
	StartID    valueobjects.LocationID
	EndID      valueobjects.LocationID
	StartIDs   []valueobjects.LocationID
	PublicOnly bool
	Page
}

// DiaryFilter narrows a diary listing. Zero-valued fields do not filter.
type DiaryFilter struct {
	UserID     valueobjects.UserID
	LocationID valueobjects.LocationID
	Tag        string
	PublicOnly bool
	Page
}

// Repositories groups the stores used by the application services
type Repositories struct {
	Locations LocationRepository
	Routes    RouteRepository
	Diaries   DiaryRepository
	Favorites FavoriteRepository
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

package events

import (
	"time"

	"github.com/google/uuid"

	"tj-backend/domain/core/valueobjects"
)

// Event types published by the travel domain
const (
	TypeLocationChanged = "location.changed"
	TypeLocationDeleted = "location.deleted"
	TypeLocationRated   = "location.rated"
	TypeLocationVisited = "location.visited"
	TypeRouteChanged    = "route.changed"
	TypeRouteDeleted    = "route.deleted"
	TypeDiaryChanged    = "diary.changed"
	TypeDiaryDeleted    = "diary.deleted"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetEventID() string
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetEventID() string      { return e.EventID }
func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(aggregateID, eventType string, ts time.Time) BaseEvent {
	return BaseEvent{
		EventID:     uuid.NewString(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   ts.UTC(),
		Version:     1,
	}
}

// Location events

// LocationChanged is raised after a location is created or updated
type LocationChanged struct {
	BaseEvent
	LocationID  valueobjects.LocationID  `json:"location_id"`
	Coordinates valueobjects.Coordinates `json:"coordinates"`
	Created     bool                     `json:"created"`
}

// NewLocationChanged creates a LocationChanged event
func NewLocationChanged(id valueobjects.LocationID, coords valueobjects.Coordinates, created bool, ts time.Time) LocationChanged {
	return LocationChanged{
		BaseEvent:   newBase(id.String(), TypeLocationChanged, ts),
		LocationID:  id,
		Coordinates: coords,
		Created:     created,
	}
}

// LocationDeleted is raised after a location is removed
type LocationDeleted struct {
	BaseEvent
	LocationID valueobjects.LocationID `json:"location_id"`
}

// NewLocationDeleted creates a LocationDeleted event
func NewLocationDeleted(id valueobjects.LocationID, ts time.Time) LocationDeleted {
	return LocationDeleted{
		BaseEvent:  newBase(id.String(), TypeLocationDeleted, ts),
		LocationID: id,
	}
}

// LocationRated is raised after a rating is folded into the aggregate
type LocationRated struct {
	BaseEvent
	LocationID valueobjects.LocationID      `json:"location_id"`
	Value      float64                      `json:"value"`
	Rating     valueobjects.RatingAggregate `json:"rating"`
}

// NewLocationRated creates a LocationRated event
func NewLocationRated(id valueobjects.LocationID, value float64, agg valueobjects.RatingAggregate, ts time.Time) LocationRated {
	return LocationRated{
		BaseEvent:  newBase(id.String(), TypeLocationRated, ts),
		LocationID: id,
		Value:      value,
		Rating:     agg,
	}
}

// LocationVisited is raised after a visit is counted
type LocationVisited struct {
	BaseEvent
	LocationID valueobjects.LocationID `json:"location_id"`
	VisitCount int64                   `json:"visit_count"`
}

// NewLocationVisited creates a LocationVisited event
func NewLocationVisited(id valueobjects.LocationID, visits int64, ts time.Time) LocationVisited {
	return LocationVisited{
		BaseEvent:  newBase(id.String(), TypeLocationVisited, ts),
		LocationID: id,
		VisitCount: visits,
	}
}

// Route events

// RouteChanged is raised after a route is created or updated
type RouteChanged struct {
	BaseEvent
	RouteID valueobjects.RouteID    `json:"route_id"`
	StartID valueobjects.LocationID `json:"start_location_id"`
	EndID   valueobjects.LocationID `json:"end_location_id"`
	Created bool                    `json:"created"`
}

// NewRouteChanged creates a RouteChanged event
func NewRouteChanged(id valueobjects.RouteID, start, end valueobjects.LocationID, created bool, ts time.Time) RouteChanged {
	return RouteChanged{
		BaseEvent: newBase(id.String(), TypeRouteChanged, ts),
		RouteID:   id,
		StartID:   start,
		EndID:     end,
		Created:   created,
	}
}

// RouteDeleted is raised after a route is removed
type RouteDeleted struct {
	BaseEvent
	RouteID valueobjects.RouteID `json:"route_id"`
}

// NewRouteDeleted creates a RouteDeleted event
func NewRouteDeleted(id valueobjects.RouteID, ts time.Time) RouteDeleted {
	return RouteDeleted{
		BaseEvent: newBase(id.String(), TypeRouteDeleted, ts),
		RouteID:   id,
	}
}

// Diary events

// DiaryChanged is raised after a diary is created, updated or liked
type DiaryChanged struct {
	BaseEvent
	DiaryID    valueobjects.DiaryID    `json:"diary_id"`
	UserID     valueobjects.UserID     `json:"user_id"`
	LocationID valueobjects.LocationID `json:"location_id"`
}

// NewDiaryChanged creates a DiaryChanged event
func NewDiaryChanged(id valueobjects.DiaryID, userID valueobjects.UserID, locationID valueobjects.LocationID, ts time.Time) DiaryChanged {
	return DiaryChanged{
		BaseEvent:  newBase(id.String(), TypeDiaryChanged, ts),
		DiaryID:    id,
		UserID:     userID,
		LocationID: locationID,
	}
}

// DiaryDeleted is raised after a diary is removed
type DiaryDeleted struct {
	BaseEvent
	DiaryID valueobjects.DiaryID `json:"diary_id"`
	UserID  valueobjects.UserID  `json:"user_id"`
}

// NewDiaryDeleted creates a DiaryDeleted event
func NewDiaryDeleted(id valueobjects.DiaryID, userID valueobjects.UserID, ts time.Time) DiaryDeleted {
	return DiaryDeleted{
		BaseEvent: newBase(id.String(), TypeDiaryDeleted, ts),
		DiaryID:   id,
		UserID:    userID,
	}
}

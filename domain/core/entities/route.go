package entities

import (
	"strings"
	"time"

	"tj-backend/domain/core/valueobjects"
)

// Route is a directed, declared connection from Start to End passing through
// Stops in order. A route back from End to Start is a separate Route.
type Route struct {
	ID          valueobjects.RouteID      `json:"id"`
	UserID      valueobjects.UserID       `json:"user_id"`
	Name        string                    `json:"name"`
	Description string                    `json:"description,omitempty"`
	StartID     valueobjects.LocationID   `json:"start_location_id"`
	EndID       valueobjects.LocationID   `json:"end_location_id"`
	Stops       []valueobjects.LocationID `json:"stops,omitempty"`
	Duration    time.Duration             `json:"duration"`
	Public      bool                      `json:"public"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

// RouteDetails are the user-editable fields of a route
type RouteDetails struct {
	Name        string
	Description string
	StartID     valueobjects.LocationID
	EndID       valueobjects.LocationID
	Stops       []valueobjects.LocationID
	Duration    time.Duration
	Public      bool
}

// NewRoute creates an unsaved route owned by userID
func NewRoute(userID valueobjects.UserID, d RouteDetails) *Route {
	now := time.Now().UTC()
	r := &Route{UserID: userID, CreatedAt: now, UpdatedAt: now}
	r.apply(d)
	return r
}

// Update replaces the editable fields
func (r *Route) Update(d RouteDetails) {
	r.apply(d)
	r.UpdatedAt = time.Now().UTC()
}

func (r *Route) apply(d RouteDetails) {
	r.Name = strings.TrimSpace(d.Name)
	r.Description = strings.TrimSpace(d.Description)
	r.StartID = d.StartID
	r.EndID = d.EndID
	r.Stops = append([]valueobjects.LocationID(nil), d.Stops...)
	r.Duration = d.Duration
	r.Public = d.Public
}

// Locations returns start, stops and end in travel order
func (r *Route) Locations() []valueobjects.LocationID {
	ids := make([]valueobjects.LocationID, 0, len(r.Stops)+2)
	ids = append(ids, r.StartID)
	ids = append(ids, r.Stops...)
	return append(ids, r.EndID)
}

// References reports whether id is the start, the end or a stop
func (r *Route) References(id valueobjects.LocationID) bool {
	for _, l := range r.Locations() {
		if l == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand to other goroutines
func (r *Route) Clone() *Route {
	c := *r
	c.Stops = append([]valueobjects.LocationID(nil), r.Stops...)
	return &c
}

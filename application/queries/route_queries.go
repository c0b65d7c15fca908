package queries

import (
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/utils"
)

// GetRouteQuery fetches one route as seen by Requester
type GetRouteQuery struct {
	Requester valueobjects.UserID  `json:"-"`
	ID        valueobjects.RouteID `json:"id" validate:"gt=0"`
}

func (q GetRouteQuery) Validate() error { return utils.ValidateStruct(q) }

// RouteDurationQuery returns a route's declared travel time
type RouteDurationQuery struct {
	Requester valueobjects.UserID  `json:"-"`
	ID        valueobjects.RouteID `json:"id" validate:"gt=0"`
}

func (q RouteDurationQuery) Validate() error { return utils.ValidateStruct(q) }

// RoutesByUserQuery lists a user's routes. Private routes are only listed
// when the requester is the owner.
type RoutesByUserQuery struct {
	Requester valueobjects.UserID `json:"-"`
	UserID    valueobjects.UserID `json:"user_id" validate:"gt=0"`
	Paging
}

func (q RoutesByUserQuery) Validate() error { return utils.ValidateStruct(q) }

// RoutesByStartQuery lists public routes leaving a location
type RoutesByStartQuery struct {
	LocationID valueobjects.LocationID `json:"location_id" validate:"gt=0"`
	Paging
}

func (q RoutesByStartQuery) Validate() error { return utils.ValidateStruct(q) }

// RoutesByEndQuery lists public routes arriving at a location
type RoutesByEndQuery struct {
	LocationID valueobjects.LocationID `json:"location_id" validate:"gt=0"`
	Paging
}

func (q RoutesByEndQuery) Validate() error { return utils.ValidateStruct(q) }

// OptimalRoutesQuery finds the fastest paths between two locations over the
// routes Requester may see. A negative MaxStops selects the configured
// default.
type OptimalRoutesQuery struct {
	Requester valueobjects.UserID     `json:"-"`
	StartID   valueobjects.LocationID `json:"start" validate:"gt=0"`
	EndID     valueobjects.LocationID `json:"end" validate:"gt=0"`
	MaxStops  int                     `json:"max_stops"`
}

func (q OptimalRoutesQuery) Validate() error { return utils.ValidateStruct(q) }

// PopularRoutesQuery lists the newest public routes
type PopularRoutesQuery struct {
	Limit int `json:"limit" validate:"gte=0"`
}

func (q PopularRoutesQuery) Validate() error { return utils.ValidateStruct(q) }

// RecommendedRoutesQuery suggests routes leaving places the user has been
type RecommendedRoutesQuery struct {
	UserID valueobjects.UserID `json:"user_id" validate:"gt=0"`
	Limit  int                 `json:"limit" validate:"gte=0"`
}

func (q RecommendedRoutesQuery) Validate() error { return utils.ValidateStruct(q) }

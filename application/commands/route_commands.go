package commands

import (
	"time"

	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/utils"
)

// RouteFields are the editable fields of a route
type RouteFields struct {
	Name        string                    `json:"name" validate:"required,max=100"`
	Description string                    `json:"description" validate:"max=1000"`
	StartID     valueobjects.LocationID   `json:"start_location_id" validate:"gt=0"`
	EndID       valueobjects.LocationID   `json:"end_location_id" validate:"gt=0,nefield=StartID"`
	Stops       []valueobjects.LocationID `json:"stops" validate:"max=50,dive,gt=0"`
	Duration    time.Duration             `json:"duration" validate:"gte=0"`
	Public      bool                      `json:"public"`
}

// Details converts the fields to entity details
func (f RouteFields) Details() entities.RouteDetails {
	return entities.RouteDetails{
		Name:        f.Name,
		Description: f.Description,
		StartID:     f.StartID,
		EndID:       f.EndID,
		Stops:       f.Stops,
		Duration:    f.Duration,
		Public:      f.Public,
	}
}

// CreateRouteCommand creates a route owned by UserID
type CreateRouteCommand struct {
	UserID valueobjects.UserID `json:"user_id" validate:"gt=0"`
	RouteFields
}

func (c CreateRouteCommand) Validate() error { return utils.ValidateStruct(c) }

// UpdateRouteCommand replaces a route's editable fields
type UpdateRouteCommand struct {
	UserID valueobjects.UserID  `json:"user_id" validate:"gt=0"`
	ID     valueobjects.RouteID `json:"id" validate:"gt=0"`
	RouteFields
}

func (c UpdateRouteCommand) Validate() error { return utils.ValidateStruct(c) }

// DeleteRouteCommand deletes a route
type DeleteRouteCommand struct {
	UserID valueobjects.UserID  `json:"user_id" validate:"gt=0"`
	ID     valueobjects.RouteID `json:"id" validate:"gt=0"`
}

func (c DeleteRouteCommand) Validate() error { return utils.ValidateStruct(c) }

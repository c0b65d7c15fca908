package queries

import (
	"tj-backend/application/services"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/utils"
)

// GetLocationQuery fetches one location
type GetLocationQuery struct {
	ID valueobjects.LocationID `json:"id" validate:"gt=0"`
}

func (q GetLocationQuery) Validate() error { return utils.ValidateStruct(q) }

// ListLocationsQuery lists public locations matching the filters
type ListLocationsQuery struct {
	Country  string   `json:"country" validate:"max=100"`
	City     string   `json:"city" validate:"max=100"`
	Category string   `json:"category" validate:"max=100"`
	Tags     []string `json:"tags" validate:"max=20,dive,max=50"`
	Paging
}

func (q ListLocationsQuery) Validate() error { return utils.ValidateStruct(q) }

// Filter converts the query to a service location query
func (q ListLocationsQuery) Filter() services.LocationQuery {
	return services.LocationQuery{Country: q.Country, City: q.City, Category: q.Category, Tags: q.Tags}
}

// SearchLocationsQuery runs a free-text search over public locations
type SearchLocationsQuery struct {
	Text string `json:"q" validate:"required,max=200"`
	Paging
}

func (q SearchLocationsQuery) Validate() error { return utils.ValidateStruct(q) }

// PopularLocationsQuery lists the most visited public locations
type PopularLocationsQuery struct {
	Limit int `json:"limit" validate:"gte=0"`
}

func (q PopularLocationsQuery) Validate() error { return utils.ValidateStruct(q) }

// NearbyLocationsQuery finds locations within a radius of a point
type NearbyLocationsQuery struct {
	Latitude     float64 `json:"lat" validate:"latitude"`
	Longitude    float64 `json:"lon" validate:"longitude"`
	RadiusMeters float64 `json:"radius" validate:"gte=0"`
	Limit        int     `json:"limit" validate:"gte=0"`
}

func (q NearbyLocationsQuery) Validate() error { return utils.ValidateStruct(q) }

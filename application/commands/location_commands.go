package commands

import (
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/utils"
)

// LocationFields are the editable fields of a location
type LocationFields struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=1000"`
	Country     string   `json:"country" validate:"max=100"`
	City        string   `json:"city" validate:"required,max=100"`
	Category    string   `json:"category" validate:"max=100"`
	Latitude    float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude   float64  `json:"longitude" validate:"gte=-180,lte=180"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=50"`
	Images      []string `json:"images" validate:"max=20,dive,url"`
	Public      bool     `json:"public"`
}

// Details converts the fields to entity details
func (f LocationFields) Details() entities.LocationDetails {
	return entities.LocationDetails{
		Name:        f.Name,
		Description: f.Description,
		Country:     f.Country,
		City:        f.City,
		Category:    f.Category,
		Latitude:    f.Latitude,
		Longitude:   f.Longitude,
		Tags:        f.Tags,
		Images:      f.Images,
		Public:      f.Public,
	}
}

// CreateLocationCommand creates a location
type CreateLocationCommand struct {
	LocationFields
}

func (c CreateLocationCommand) Validate() error { return utils.ValidateStruct(c) }

// UpdateLocationCommand replaces a location's editable fields
type UpdateLocationCommand struct {
	ID valueobjects.LocationID `json:"id" validate:"gt=0"`
	LocationFields
}

func (c UpdateLocationCommand) Validate() error { return utils.ValidateStruct(c) }

// DeleteLocationCommand deletes a location no route references
type DeleteLocationCommand struct {
	ID valueobjects.LocationID `json:"id" validate:"gt=0"`
}

func (c DeleteLocationCommand) Validate() error { return utils.ValidateStruct(c) }

// AddLocationImageCommand attaches an image URL to a location
type AddLocationImageCommand struct {
	ID  valueobjects.LocationID `json:"id" validate:"gt=0"`
	URL string                  `json:"url" validate:"required,url"`
}

func (c AddLocationImageCommand) Validate() error { return utils.ValidateStruct(c) }

// RemoveLocationImageCommand detaches an image URL from a location
type RemoveLocationImageCommand struct {
	ID  valueobjects.LocationID `json:"id" validate:"gt=0"`
	URL string                  `json:"url" validate:"required,url"`
}

func (c RemoveLocationImageCommand) Validate() error { return utils.ValidateStruct(c) }

// RecordVisitCommand counts one visit to a location
type RecordVisitCommand struct {
	ID valueobjects.LocationID `json:"id" validate:"gt=0"`
}

func (c RecordVisitCommand) Validate() error { return utils.ValidateStruct(c) }

// RateLocationCommand applies a rating to a location. The accepted range is
// checked by the rating aggregator.
type RateLocationCommand struct {
	ID    valueobjects.LocationID `json:"id" validate:"gt=0"`
	Value float64                 `json:"value"`
}

func (c RateLocationCommand) Validate() error { return utils.ValidateStruct(c) }

package commands

import (
	"time"

	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/utils"
)

// DiaryFields are the editable fields of a diary
type DiaryFields struct {
	LocationID valueobjects.LocationID `json:"location_id" validate:"gt=0"`
	Title      string                  `json:"title" validate:"required,max=200"`
	Content    string                  `json:"content" validate:"max=50000"`
	TravelDate time.Time               `json:"travel_date"`
	Tags       []string                `json:"tags" validate:"max=20,dive,max=50"`
	Images     []string                `json:"images" validate:"max=20,dive,url"`
	Public     bool                    `json:"public"`
}

// Details converts the fields to entity details
func (f DiaryFields) Details() entities.DiaryDetails {
	return entities.DiaryDetails{
		LocationID: f.LocationID,
		Title:      f.Title,
		Content:    f.Content,
		TravelDate: f.TravelDate,
		Tags:       f.Tags,
		Images:     f.Images,
		Public:     f.Public,
	}
}

// CreateDiaryCommand creates a diary owned by UserID
type CreateDiaryCommand struct {
	UserID valueobjects.UserID `json:"user_id" validate:"gt=0"`
	DiaryFields
}

func (c CreateDiaryCommand) Validate() error { return utils.ValidateStruct(c) }

// UpdateDiaryCommand replaces a diary's editable fields
type UpdateDiaryCommand struct {
	UserID valueobjects.UserID  `json:"user_id" validate:"gt=0"`
	ID     valueobjects.DiaryID `json:"id" validate:"gt=0"`
	DiaryFields
}

func (c UpdateDiaryCommand) Validate() error { return utils.ValidateStruct(c) }

// DeleteDiaryCommand deletes a diary
type DeleteDiaryCommand struct {
	UserID valueobjects.UserID  `json:"user_id" validate:"gt=0"`
	ID     valueobjects.DiaryID `json:"id" validate:"gt=0"`
}

func (c DeleteDiaryCommand) Validate() error { return utils.ValidateStruct(c) }

// LikeDiaryCommand adds a like to a diary
type LikeDiaryCommand struct {
	UserID valueobjects.UserID  `json:"user_id" validate:"gt=0"`
	ID     valueobjects.DiaryID `json:"id" validate:"gt=0"`
}

func (c LikeDiaryCommand) Validate() error { return utils.ValidateStruct(c) }

package queries

import (
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/utils"
)

// GetDiaryQuery fetches one diary as seen by Requester
type GetDiaryQuery struct {
	Requester valueobjects.UserID  `json:"-"`
	ID        valueobjects.DiaryID `json:"id" validate:"gt=0"`
}

func (q GetDiaryQuery) Validate() error { return utils.ValidateStruct(q) }

// DiariesByUserQuery lists a user's diaries
type DiariesByUserQuery struct {
	Requester valueobjects.UserID `json:"-"`
	UserID    valueobjects.UserID `json:"user_id" validate:"gt=0"`
	Paging
}

func (q DiariesByUserQuery) Validate() error { return utils.ValidateStruct(q) }

// DiariesByLocationQuery lists public diaries about a location
type DiariesByLocationQuery struct {
	LocationID valueobjects.LocationID `json:"location_id" validate:"gt=0"`
	Paging
}

func (q DiariesByLocationQuery) Validate() error { return utils.ValidateStruct(q) }

// DiariesByTagQuery lists public diaries carrying a tag
type DiariesByTagQuery struct {
	Tag string `json:"tag" validate:"required,max=50"`
	Paging
}

func (q DiariesByTagQuery) Validate() error { return utils.ValidateStruct(q) }

// PopularDiariesQuery lists the most liked public diaries
type PopularDiariesQuery struct {
	Limit int `json:"limit" validate:"gte=0"`
}

func (q PopularDiariesQuery) Validate() error { return utils.ValidateStruct(q) }

package queries

import (
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/utils"
)

// ListFavoritesQuery lists a user's favorites, newest first
type ListFavoritesQuery struct {
	UserID valueobjects.UserID `json:"user_id" validate:"gt=0"`
}

func (q ListFavoritesQuery) Validate() error { return utils.ValidateStruct(q) }

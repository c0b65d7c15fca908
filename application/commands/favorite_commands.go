package commands

import (
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/utils"
)

// AddFavoriteCommand marks a location, diary or route as a favorite
type AddFavoriteCommand struct {
	UserID valueobjects.UserID         `json:"user_id" validate:"gt=0"`
	Target valueobjects.FavoriteTarget `json:"target" validate:"required"`
}

func (c AddFavoriteCommand) Validate() error { return utils.ValidateStruct(c) }

// RemoveFavoriteCommand unmarks a favorite
type RemoveFavoriteCommand struct {
	UserID valueobjects.UserID         `json:"user_id" validate:"gt=0"`
	Target valueobjects.FavoriteTarget `json:"target" validate:"required"`
}

func (c RemoveFavoriteCommand) Validate() error { return utils.ValidateStruct(c) }

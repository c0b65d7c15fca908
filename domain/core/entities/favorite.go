package entities

import (
	"time"

	"tj-backend/domain/core/valueobjects"
)

// Favorite marks a location, diary or route as a user's favorite
type Favorite struct {
	UserID    valueobjects.UserID
	Target    valueobjects.FavoriteTarget
	CreatedAt time.Time
}

// NewFavorite creates a favorite stamped with the current time
func NewFavorite(userID valueobjects.UserID, target valueobjects.FavoriteTarget) *Favorite {
	return &Favorite{UserID: userID, Target: target, CreatedAt: time.Now().UTC()}
}

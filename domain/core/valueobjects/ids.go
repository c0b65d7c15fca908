package valueobjects

import (
	"strconv"
	"strings"

	pkgerrors "tj-backend/pkg/errors"
)

// LocationID identifies a location. Ids are assigned by the store and are
// always positive.
type LocationID int64

// RouteID identifies a declared route.
type RouteID int64

// DiaryID identifies a travel diary.
type DiaryID int64

// UserID identifies the owner of diaries, routes and favorites.
type UserID int64

func parseID(kind, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, pkgerrors.NewValidationErrorf("%s id cannot be empty", kind)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, pkgerrors.NewValidationErrorf("%s id must be a positive integer, got %q", kind, raw)
	}
	return n, nil
}

// ParseLocationID parses a path or query parameter
func ParseLocationID(raw string) (LocationID, error) {
	n, err := parseID("location", raw)
	return LocationID(n), err
}

// ParseRouteID parses a path or query parameter
func ParseRouteID(raw string) (RouteID, error) {
	n, err := parseID("route", raw)
	return RouteID(n), err
}

// ParseDiaryID parses a path or query parameter
func ParseDiaryID(raw string) (DiaryID, error) {
	n, err := parseID("diary", raw)
	return DiaryID(n), err
}

// ParseUserID parses a path parameter or a token subject
func ParseUserID(raw string) (UserID, error) {
	n, err := parseID("user", raw)
	return UserID(n), err
}

func (id LocationID) String() string { return strconv.FormatInt(int64(id), 10) }

func (id RouteID) String() string { return strconv.FormatInt(int64(id), 10) }

func (id DiaryID) String() string { return strconv.FormatInt(int64(id), 10) }

func (id UserID) String() string { return strconv.FormatInt(int64(id), 10) }

// IsZero reports whether the id has not been assigned yet
func (id LocationID) IsZero() bool { return id == 0 }

// IsZero reports whether the id has not been assigned yet
func (id RouteID) IsZero() bool { return id == 0 }

// IsZero reports whether the id has not been assigned yet
func (id DiaryID) IsZero() bool { return id == 0 }

// IsZero reports whether the id has not been assigned yet
func (id UserID) IsZero() bool { return id == 0 }

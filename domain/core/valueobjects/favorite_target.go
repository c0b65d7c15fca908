package valueobjects

import (
	"fmt"

	pkgerrors "tj-backend/pkg/errors"
)

// TargetKind names the entity kinds a favorite may point at
type TargetKind string

const (
	TargetLocation TargetKind = "location"
	TargetDiary    TargetKind = "diary"
	TargetRoute    TargetKind = "route"
)

// FavoriteTarget is one of LocationTarget, DiaryTarget or RouteTarget. The
// set is closed: only this package can add variants.
type FavoriteTarget interface {
	Kind() TargetKind
	RawID() int64
	String() string
	isFavoriteTarget()
}

// LocationTarget favorites a location
type LocationTarget struct{ ID LocationID }

// DiaryTarget favorites a diary
type DiaryTarget struct{ ID DiaryID }

// RouteTarget favorites a route
type RouteTarget struct{ ID RouteID }

func (LocationTarget) Kind() TargetKind { return TargetLocation }
func (DiaryTarget) Kind() TargetKind    { return TargetDiary }
func (RouteTarget) Kind() TargetKind    { return TargetRoute }

func (t LocationTarget) RawID() int64 { return int64(t.ID) }
func (t DiaryTarget) RawID() int64    { return int64(t.ID) }
func (t RouteTarget) RawID() int64    { return int64(t.ID) }

func (t LocationTarget) String() string { return fmt.Sprintf("%s:%d", TargetLocation, t.ID) }
func (t DiaryTarget) String() string    { return fmt.Sprintf("%s:%d", TargetDiary, t.ID) }
func (t RouteTarget) String() string    { return fmt.Sprintf("%s:%d", TargetRoute, t.ID) }

func (LocationTarget) isFavoriteTarget() {}
func (DiaryTarget) isFavoriteTarget()    {}
func (RouteTarget) isFavoriteTarget()    {}

// NewFavoriteTarget builds the variant for kind. Unknown kinds and
// non-positive ids are validation errors.
func NewFavoriteTarget(kind TargetKind, id int64) (FavoriteTarget, error) {
	if id <= 0 {
		return nil, pkgerrors.NewValidationErrorf("%s id must be a positive integer", kind)
	}
	switch kind {
	case TargetLocation:
		return LocationTarget{ID: LocationID(id)}, nil
	case TargetDiary:
		return DiaryTarget{ID: DiaryID(id)}, nil
	case TargetRoute:
		return RouteTarget{ID: RouteID(id)}, nil
	default:
		return nil, pkgerrors.NewValidationErrorf("unknown favorite kind %q", kind)
	}
}

// ParseFavoriteTarget builds a target from path parameters
func ParseFavoriteTarget(kind, rawID string) (FavoriteTarget, error) {
	id, err := parseID(kind, rawID)
	if err != nil {
		return nil, err
	}
	return NewFavoriteTarget(TargetKind(kind), id)
}

package handlers

import (
	"strings"
	"time"

	"tj-backend/application/commands"
	"tj-backend/application/services"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/domain/routing"
	"tj-backend/pkg/utils"
)

// LocationResponse is a location with the geohash of its coordinates
type LocationResponse struct {
	*entities.Location
	Geohash string `json:"geohash"`
}

// NewLocationResponse wraps a location for the API
func NewLocationResponse(loc *entities.Location) LocationResponse {
	return LocationResponse{Location: loc, Geohash: loc.Coordinates.Geohash()}
}

// NewLocationResponses wraps a list of locations
func NewLocationResponses(locs []*entities.Location) []LocationResponse {
	out := make([]LocationResponse, len(locs))
	for i, loc := range locs {
		out[i] = NewLocationResponse(loc)
	}
	return out
}

// NearbyLocationResponse is one nearby search hit
type NearbyLocationResponse struct {
	Location       LocationResponse `json:"location"`
	DistanceMeters float64          `json:"distance_meters"`
}

// NewNearbyResponses wraps nearby search results
func NewNearbyResponses(hits []services.NearbyLocation) []NearbyLocationResponse {
	out := make([]NearbyLocationResponse, len(hits))
	for i, hit := range hits {
		out[i] = NearbyLocationResponse{
			Location:       NewLocationResponse(hit.Location),
			DistanceMeters: hit.DistanceMeters,
		}
	}
	return out
}

// RatingRequest is the body of POST /locations/{id}/rating
type RatingRequest struct {
	Value *float64 `json:"value" validate:"required"`
}

// ImageRequest is the body of the image endpoints
type ImageRequest struct {
	URL string `json:"url"`
}

// RouteRequest is the body of route create and update. Duration accepts Go
// duration strings or a number of minutes.
type RouteRequest struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	StartID     valueobjects.LocationID   `json:"start_location_id"`
	EndID       valueobjects.LocationID   `json:"end_location_id"`
	Stops       []valueobjects.LocationID `json:"stops"`
	Duration    string                    `json:"duration"`
	Public      bool                      `json:"public"`
}

// Fields converts the request to command fields
func (req RouteRequest) Fields() (commands.RouteFields, error) {
	d, err := utils.ParseDuration("duration", req.Duration)
	if err != nil {
		return commands.RouteFields{}, err
	}
	return commands.RouteFields{
		Name:        req.Name,
		Description: req.Description,
		StartID:     req.StartID,
		EndID:       req.EndID,
		Stops:       req.Stops,
		Duration:    d,
		Public:      req.Public,
	}, nil
}

// RouteResponse renders durations in a readable form
type RouteResponse struct {
	*entities.Route
	Duration        string  `json:"duration"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// NewRouteResponse wraps a route for the API
func NewRouteResponse(r *entities.Route) RouteResponse {
	return RouteResponse{
		Route:           r,
		Duration:        r.Duration.String(),
		DurationMinutes: r.Duration.Minutes(),
	}
}

// NewRouteResponses wraps a list of routes
func NewRouteResponses(routes []*entities.Route) []RouteResponse {
	out := make([]RouteResponse, len(routes))
	for i, r := range routes {
		out[i] = NewRouteResponse(r)
	}
	return out
}

// DurationResponse is the body of GET /routes/{id}/duration
type DurationResponse struct {
	RouteID  valueobjects.RouteID `json:"route_id"`
	Duration string               `json:"duration"`
	Minutes  float64              `json:"minutes"`
}

// PathLeg is one route taken along an optimal path
type PathLeg struct {
	RouteID  valueobjects.RouteID      `json:"route_id"`
	From     valueobjects.LocationID   `json:"from"`
	To       valueobjects.LocationID   `json:"to"`
	Stops    []valueobjects.LocationID `json:"stops,omitempty"`
	Duration string                    `json:"duration"`
}

// PathResponse is one optimal path
type PathResponse struct {
	RouteIDs      []valueobjects.RouteID `json:"route_ids"`
	Legs          []PathLeg              `json:"legs"`
	TotalDuration string                 `json:"total_duration"`
	TotalMinutes  float64                `json:"total_minutes"`
	Stops         int                    `json:"stops"`
}

// NewPathResponses wraps optimizer results, keeping their order
func NewPathResponses(paths []routing.PathResult) []PathResponse {
	out := make([]PathResponse, len(paths))
	for i, p := range paths {
		legs := make([]PathLeg, len(p.Edges))
		for j, e := range p.Edges {
			legs[j] = PathLeg{
				RouteID:  e.ID,
				From:     e.From,
				To:       e.To,
				Stops:    e.Stops,
				Duration: e.Duration.String(),
			}
		}
		out[i] = PathResponse{
			RouteIDs:      p.EdgeIDs(),
			Legs:          legs,
			TotalDuration: p.TotalDuration.String(),
			TotalMinutes:  p.TotalDuration.Minutes(),
			Stops:         p.Stops,
		}
	}
	return out
}

// DiaryRequest is the body of diary create and update. TravelDate accepts
// YYYY-MM-DD or RFC3339.
type DiaryRequest struct {
	LocationID valueobjects.LocationID `json:"location_id"`
	Title      string                  `json:"title"`
	Content    string                  `json:"content"`
	TravelDate string                  `json:"travel_date"`
	Tags       []string                `json:"tags"`
	Images     []string                `json:"images"`
	Public     bool                    `json:"public"`
}

// Fields converts the request to command fields
func (req DiaryRequest) Fields() (commands.DiaryFields, error) {
	date, err := utils.ParseDate("travel_date", req.TravelDate)
	if err != nil {
		return commands.DiaryFields{}, err
	}
	return commands.DiaryFields{
		LocationID: req.LocationID,
		Title:      req.Title,
		Content:    req.Content,
		TravelDate: date,
		Tags:       req.Tags,
		Images:     req.Images,
		Public:     req.Public,
	}, nil
}

// LikeResponse is the body of POST /diaries/{id}/like
type LikeResponse struct {
	DiaryID valueobjects.DiaryID `json:"diary_id"`
	Likes   int64                `json:"likes"`
}

// FavoriteRequest is the body of POST /favorites
type FavoriteRequest struct {
	Kind     string `json:"kind"`
	TargetID int64  `json:"target_id"`
}

// Target parses the request into a favorite target
func (req FavoriteRequest) Target() (valueobjects.FavoriteTarget, error) {
	return valueobjects.NewFavoriteTarget(valueobjects.TargetKind(strings.ToLower(strings.TrimSpace(req.Kind))), req.TargetID)
}

// FavoriteResponse is one favorite
type FavoriteResponse struct {
	Kind      valueobjects.TargetKind `json:"kind"`
	TargetID  int64                   `json:"target_id"`
	CreatedAt time.Time               `json:"created_at"`
}

// NewFavoriteResponses wraps a user's favorites
func NewFavoriteResponses(favs []*entities.Favorite) []FavoriteResponse {
	out := make([]FavoriteResponse, len(favs))
	for i, f := range favs {
		out[i] = newFavoriteResponse(f)
	}
	return out
}

func newFavoriteResponse(f *entities.Favorite) FavoriteResponse {
	return FavoriteResponse{
		Kind:      f.Target.Kind(),
		TargetID:  f.Target.RawID(),
		CreatedAt: f.CreatedAt,
	}
}

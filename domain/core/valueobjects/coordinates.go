package valueobjects

import (
	"math"

	geohash "github.com/TomiHiltunen/geohash-golang"

	pkgerrors "tj-backend/pkg/errors"
)

// GeohashPrecision is the number of characters used for the geohash exposed
// alongside coordinates (roughly 150m cells).
const GeohashPrecision = 7

// Coordinates is a point on the globe in signed decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinates validates the ranges and returns the point
func NewCoordinates(lat, lon float64) (Coordinates, error) {
	if err := ValidateLatLon(lat, lon); err != nil {
		return Coordinates{}, err
	}
	return Coordinates{Latitude: lat, Longitude: lon}, nil
}

// ValidateLatLon checks latitude ∈ [-90, 90] and longitude ∈ [-180, 180]
func ValidateLatLon(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return pkgerrors.NewValidationErrorf("latitude must be within [-90, 90], got %v", lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return pkgerrors.NewValidationErrorf("longitude must be within [-180, 180], got %v", lon)
	}
	return nil
}

// Geohash encodes the point with GeohashPrecision characters
func (c Coordinates) Geohash() string {
	return geohash.EncodeWithPrecision(c.Latitude, c.Longitude, GeohashPrecision)
}

// Equals compares both components exactly
func (c Coordinates) Equals(other Coordinates) bool {
	return c.Latitude == other.Latitude && c.Longitude == other.Longitude
}

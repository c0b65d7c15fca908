package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tj-backend/domain/core/valueobjects"
	pkgerrors "tj-backend/pkg/errors"
)

func TestNewLocation(t *testing.T) {
	loc, err := NewLocation(LocationDetails{
		Name:      "  Summer Palace ",
		City:      "Beijing",
		Latitude:  39.99,
		Longitude: 116.27,
		Tags:      []string{"Garden", "garden", " ", "UNESCO"},
		Images:    []string{"a.jpg", "a.jpg"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Summer Palace", loc.Name)
	assert.Equal(t, []string{"garden", "unesco"}, loc.Tags)
	assert.Equal(t, []string{"a.jpg"}, loc.Images)
	assert.True(t, loc.HasAnyTag([]string{"museum", "Garden"}))
	assert.True(t, loc.Matches("palace"))
	assert.False(t, loc.Matches("temple"))

	_, err = NewLocation(LocationDetails{Name: "x", City: "y", Latitude: 100})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestLocation_Images(t *testing.T) {
	loc, err := NewLocation(LocationDetails{Name: "Bund", City: "Shanghai"})
	require.NoError(t, err)

	assert.True(t, loc.AddImage("1.jpg"))
	assert.False(t, loc.AddImage("1.jpg"))
	assert.True(t, loc.AddImage("2.jpg"))

	clone := loc.Clone()
	assert.True(t, loc.RemoveImage("1.jpg"))
	assert.False(t, loc.RemoveImage("1.jpg"))
	assert.Equal(t, []string{"2.jpg"}, loc.Images)
	assert.Equal(t, []string{"1.jpg", "2.jpg"}, clone.Images)
}

func TestLocation_UpdateKeepsCounters(t *testing.T) {
	loc, err := NewLocation(LocationDetails{Name: "A", City: "B"})
	require.NoError(t, err)
	loc.VisitCount = 9
	loc.Rating = valueobjects.NewRatingAggregate(4, 2)

	require.NoError(t, loc.Update(LocationDetails{Name: "A2", City: "B", Latitude: 1, Longitude: 2}))
	assert.Equal(t, int64(9), loc.VisitCount)
	assert.Equal(t, int64(2), loc.Rating.Count)
	assert.Equal(t, 1.0, loc.Coordinates.Latitude)

	assert.Error(t, loc.Update(LocationDetails{Name: "A2", City: "B", Longitude: 200}))
}

func TestRoute_Locations(t *testing.T) {
	r := NewRoute(7, RouteDetails{
		Name:     "Loop",
		StartID:  1,
		EndID:    4,
		Stops:    []valueobjects.LocationID{2, 3},
		Duration: 90 * time.Minute,
	})

	assert.Equal(t, []valueobjects.LocationID{1, 2, 3, 4}, r.Locations())
	assert.True(t, r.References(3))
	assert.False(t, r.References(5))

	clone := r.Clone()
	clone.Stops[0] = 99
	assert.Equal(t, valueobjects.LocationID(2), r.Stops[0])
}

func TestDiary_Ownership(t *testing.T) {
	d := NewDiary(3, DiaryDetails{Title: "Day one", LocationID: 1, Tags: []string{"Food"}})
	assert.True(t, d.OwnedBy(3))
	assert.False(t, d.OwnedBy(4))
	assert.True(t, d.HasTag("food"))
}

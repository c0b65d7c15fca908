package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tj-backend/domain/core/valueobjects"
)

func TestEventsCarryIdentity(t *testing.T) {
	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		event     DomainEvent
		wantType  string
		wantAggID string
	}{
		{NewLocationChanged(3, valueobjects.Coordinates{Latitude: 1, Longitude: 2}, true, ts), TypeLocationChanged, "3"},
		{NewLocationDeleted(3, ts), TypeLocationDeleted, "3"},
		{NewLocationRated(3, 4.5, valueobjects.RatingAggregate{Sum: 4.5, Count: 1}, ts), TypeLocationRated, "3"},
		{NewLocationVisited(3, 10, ts), TypeLocationVisited, "3"},
		{NewRouteChanged(8, 1, 2, false, ts), TypeRouteChanged, "8"},
		{NewRouteDeleted(8, ts), TypeRouteDeleted, "8"},
		{NewDiaryChanged(5, 1, 3, ts), TypeDiaryChanged, "5"},
		{NewDiaryDeleted(5, 1, ts), TypeDiaryDeleted, "5"},
	}

	for _, tt := range tests {
		t.Run(tt.wantType, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.event.GetEventType())
			assert.Equal(t, tt.wantAggID, tt.event.GetAggregateID())
			assert.Equal(t, ts, tt.event.GetTimestamp())
			assert.NotEmpty(t, tt.event.GetEventID())
		})
	}
}

func TestLocationRatedJSON(t *testing.T) {
	e := NewLocationRated(3, 5, valueobjects.RatingAggregate{Sum: 8, Count: 2}, time.Now())
	data, err := json.Marshal(e)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "location.rated", decoded["event_type"])
	assert.Equal(t, 4.0, decoded["rating"].(map[string]interface{})["average"])
}

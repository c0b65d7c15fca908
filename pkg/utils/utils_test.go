package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tj-backend/pkg/errors"
)

type sample struct {
	Name   string  `json:"name" validate:"required,max=5"`
	Lat    float64 `json:"lat" validate:"latitude"`
	Rating float64 `json:"rating" validate:"gte=0,lte=5"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(sample{Name: "ok", Lat: 10, Rating: 3}))

	err := ValidateStruct(sample{Name: "", Lat: 91, Rating: 6})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	fields := errors.GetAppError(err).Details["fields"].(map[string][]string)
	assert.Equal(t, []string{"is required"}, fields["name"])
	assert.Equal(t, []string{"must be a latitude in [-90, 90]"}, fields["lat"])
	assert.Equal(t, []string{"must be at most 5"}, fields["rating"])
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"", time.Time{}, false},
		{"2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), false},
		{"2024-05-01T10:00:00+02:00", time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), false},
		{"yesterday", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate("travel_date", tt.in)
			if tt.wantErr {
				assert.True(t, errors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("duration", "1h30m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	d, err = ParseDuration("duration", "45")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, d)

	_, err = ParseDuration("duration", "soon")
	assert.True(t, errors.IsValidation(err))
}

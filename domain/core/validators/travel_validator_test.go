package validators

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tj-backend/domain/config"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/errors"
)

func validLocation() *entities.Location {
	return &entities.Location{
		Name:        "West Lake",
		City:        "Hangzhou",
		Coordinates: valueobjects.Coordinates{Latitude: 30.24, Longitude: 120.14},
		Tags:        []string{"lake", "西湖"},
		Images:      []string{"https://img.example.com/1.jpg"},
	}
}

func TestValidateLocation(t *testing.T) {
	v := NewTravelValidator(config.DefaultDomainConfig())

	tests := []struct {
		name    string
		mutate  func(*entities.Location)
		wantErr string
	}{
		{"valid", func(*entities.Location) {}, ""},
		{"missing name", func(l *entities.Location) { l.Name = " " }, "name"},
		{"missing city", func(l *entities.Location) { l.City = "" }, "city"},
		{"long name", func(l *entities.Location) { l.Name = strings.Repeat("a", 101) }, "name"},
		{"bad latitude", func(l *entities.Location) { l.Coordinates.Latitude = -91 }, "coordinates"},
		{"bad tag", func(l *entities.Location) { l.Tags = []string{"<b>"} }, "tags"},
		{"bad image", func(l *entities.Location) { l.Images = []string{"ftp://x/y"} }, "images"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := validLocation()
			tt.mutate(loc)
			err := v.ValidateLocation(loc)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.IsValidation(err))
			fields := errors.GetAppError(err).Details["fields"].(map[string][]string)
			assert.Contains(t, fields, tt.wantErr)
		})
	}
}

func TestValidateRoute(t *testing.T) {
	v := NewTravelValidator(nil)
	valid := func() *entities.Route {
		return entities.NewRoute(1, entities.RouteDetails{Name: "r", StartID: 1, EndID: 2, Duration: time.Hour})
	}

	assert.NoError(t, v.ValidateRoute(valid()))

	r := valid()
	r.Duration = -time.Minute
	assert.True(t, errors.IsValidation(v.ValidateRoute(r)))

	r = valid()
	r.EndID = r.StartID
	assert.True(t, errors.IsValidation(v.ValidateRoute(r)))

	r = valid()
	r.Stops = []valueobjects.LocationID{3, 0}
	assert.True(t, errors.IsValidation(v.ValidateRoute(r)))
}

func TestValidateDiary(t *testing.T) {
	v := NewTravelValidator(nil)

	d := entities.NewDiary(1, entities.DiaryDetails{Title: "Day 1", LocationID: 3, Content: "great"})
	assert.NoError(t, v.ValidateDiary(d))

	d.Content = "<script>alert(1)</script>"
	assert.True(t, errors.IsValidation(v.ValidateDiary(d)))

	d = entities.NewDiary(1, entities.DiaryDetails{Title: "", LocationID: 0})
	assert.True(t, errors.IsValidation(v.ValidateDiary(d)))
}

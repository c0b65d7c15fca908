package entities

import (
	"strings"
	"time"

	"tj-backend/domain/core/valueobjects"
)

// Location is a place travellers visit. Rating and VisitCount are owned by
// the rating aggregator and only change through it.
type Location struct {
	ID          valueobjects.LocationID      `json:"id"`
	Name        string                       `json:"name"`
	Description string                       `json:"description,omitempty"`
	Country     string                       `json:"country,omitempty"`
	City        string                       `json:"city"`
	Category    string                       `json:"category,omitempty"`
	Coordinates valueobjects.Coordinates     `json:"coordinates"`
	Tags        []string                     `json:"tags,omitempty"`
	Images      []string                     `json:"images,omitempty"`
	Public      bool                         `json:"public"`
	VisitCount  int64                        `json:"visit_count"`
	Rating      valueobjects.RatingAggregate `json:"rating"`
	CreatedAt   time.Time                    `json:"created_at"`
	UpdatedAt   time.Time                    `json:"updated_at"`
}

// LocationDetails are the user-editable fields of a location
type LocationDetails struct {
	Name        string
	Description string
	Country     string
	City        string
	Category    string
	Latitude    float64
	Longitude   float64
	Tags        []string
	Images      []string
	Public      bool
}

// NewLocation creates an unsaved location. The store assigns the id.
func NewLocation(d LocationDetails) (*Location, error) {
	coords, err := valueobjects.NewCoordinates(d.Latitude, d.Longitude)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	loc := &Location{
		Coordinates: coords,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	loc.apply(d)
	return loc, nil
}

// Update replaces the editable fields, keeping counters and rating
func (l *Location) Update(d LocationDetails) error {
	coords, err := valueobjects.NewCoordinates(d.Latitude, d.Longitude)
	if err != nil {
		return err
	}
	l.Coordinates = coords
	l.apply(d)
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (l *Location) apply(d LocationDetails) {
	l.Name = strings.TrimSpace(d.Name)
	l.Description = strings.TrimSpace(d.Description)
	l.Country = strings.TrimSpace(d.Country)
	l.City = strings.TrimSpace(d.City)
	l.Category = strings.TrimSpace(d.Category)
	l.Tags = NormalizeTags(d.Tags)
	l.Images = dedupe(d.Images)
	l.Public = d.Public
}

// AddImage appends url unless it is already attached
func (l *Location) AddImage(url string) bool {
	for _, img := range l.Images {
		if img == url {
			return false
		}
	}
	l.Images = append(l.Images, url)
	l.UpdatedAt = time.Now().UTC()
	return true
}

// RemoveImage detaches url; it reports whether anything changed
func (l *Location) RemoveImage(url string) bool {
	for i, img := range l.Images {
		if img == url {
			l.Images = append(l.Images[:i:i], l.Images[i+1:]...)
			l.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

// HasAnyTag reports whether the location carries at least one of tags
func (l *Location) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		want = strings.ToLower(strings.TrimSpace(want))
		for _, have := range l.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Matches reports whether text occurs in the name or description, ignoring case
func (l *Location) Matches(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.Name), text) ||
		strings.Contains(strings.ToLower(l.Description), text)
}

// Clone returns a deep copy safe to hand to other goroutines
func (l *Location) Clone() *Location {
	c := *l
	c.Tags = append([]string(nil), l.Tags...)
	c.Images = append([]string(nil), l.Images...)
	return &c
}

// NormalizeTags lowercases, trims and dedupes tags, dropping empty ones
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

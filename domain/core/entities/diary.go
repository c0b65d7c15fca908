package entities

import (
	"strings"
	"time"

	"tj-backend/domain/core/valueobjects"
)

// Diary is a user's travel journal entry about a location
type Diary struct {
	ID         valueobjects.DiaryID    `json:"id"`
	UserID     valueobjects.UserID     `json:"user_id"`
	LocationID valueobjects.LocationID `json:"location_id"`
	Title      string                  `json:"title"`
	Content    string                  `json:"content"`
	TravelDate time.Time               `json:"travel_date"`
	Tags       []string                `json:"tags,omitempty"`
	Images     []string                `json:"images,omitempty"`
	Likes      int64                   `json:"likes"`
	Public     bool                    `json:"public"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// DiaryDetails are the user-editable fields of a diary
type DiaryDetails struct {
	LocationID valueobjects.LocationID
	Title      string
	Content    string
	TravelDate time.Time
	Tags       []string
	Images     []string
	Public     bool
}

// NewDiary creates an unsaved diary owned by userID
func NewDiary(userID valueobjects.UserID, d DiaryDetails) *Diary {
	now := time.Now().UTC()
	diary := &Diary{UserID: userID, CreatedAt: now, UpdatedAt: now}
	diary.apply(d)
	return diary
}

// Update replaces the editable fields
func (d *Diary) Update(details DiaryDetails) {
	d.apply(details)
	d.UpdatedAt = time.Now().UTC()
}

func (d *Diary) apply(details DiaryDetails) {
	d.LocationID = details.LocationID
	d.Title = strings.TrimSpace(details.Title)
	d.Content = details.Content
	d.TravelDate = details.TravelDate.UTC()
	d.Tags = NormalizeTags(details.Tags)
	d.Images = dedupe(details.Images)
	d.Public = details.Public
}

// OwnedBy reports whether userID authored the diary
func (d *Diary) OwnedBy(userID valueobjects.UserID) bool {
	return d.UserID == userID
}

// HasTag reports whether the diary carries tag
func (d *Diary) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand to other goroutines
func (d *Diary) Clone() *Diary {
	c := *d
	c.Tags = append([]string(nil), d.Tags...)
	c.Images = append([]string(nil), d.Images...)
	return &c
}

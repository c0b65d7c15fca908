package utils

import (
	"strconv"
	"strings"
	"time"

	"tj-backend/pkg/errors"
)

// DateLayout is the calendar date format accepted for travel dates
const DateLayout = "2006-01-02"

// NowRFC3339 returns the current time in RFC3339 format
func NowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ParseDate accepts a calendar date or an RFC3339 timestamp. An empty string
// yields the zero time.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.NewValidationErrorf("%s must be a date (YYYY-MM-DD) or RFC3339 timestamp", field)
	}
	return t.UTC(), nil
}

// ParseDuration accepts Go duration strings such as "1h30m" or a number of
// minutes.
func ParseDuration(field, s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if minutes, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(minutes) * time.Minute, nil
	}
	return 0, errors.NewValidationErrorf("%s must be a duration such as 90m or 1h30m", field)
}

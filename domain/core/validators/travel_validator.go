package validators

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"tj-backend/domain/config"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/errors"
)

var tagPattern = regexp.MustCompile(`^[\p{L}\p{N}_ -]+$`)

// TravelValidator validates locations, routes and diaries before they are
// persisted
type TravelValidator struct {
	cfg          *config.DomainConfig
	tagMaxLength int
}

// NewTravelValidator creates a validator bound to the domain limits
func NewTravelValidator(cfg *config.DomainConfig) *TravelValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &TravelValidator{cfg: cfg, tagMaxLength: 50}
}

// ValidateLocation checks the editable fields of a location
func (v *TravelValidator) ValidateLocation(loc *entities.Location) error {
	errs := errors.NewValidationErrors()

	v.requireText(errs, "name", loc.Name, v.cfg.MaxNameLength)
	v.requireText(errs, "city", loc.City, v.cfg.MaxNameLength)
	v.optionalText(errs, "description", loc.Description, v.cfg.MaxDescriptionLength)
	v.optionalText(errs, "country", loc.Country, v.cfg.MaxNameLength)
	v.optionalText(errs, "category", loc.Category, v.cfg.MaxNameLength)

	if err := valueobjects.ValidateLatLon(loc.Coordinates.Latitude, loc.Coordinates.Longitude); err != nil {
		errs.Add("coordinates", errors.GetAppError(err).Message)
	}

	v.validateTags(errs, loc.Tags)
	v.validateImages(errs, loc.Images)

	return errs.Err()
}

// ValidateRoute checks the editable fields of a route. Whether the referenced
// locations exist is checked against the route graph, not here.
func (v *TravelValidator) ValidateRoute(r *entities.Route) error {
	errs := errors.NewValidationErrors()

	v.requireText(errs, "name", r.Name, v.cfg.MaxNameLength)
	v.optionalText(errs, "description", r.Description, v.cfg.MaxDescriptionLength)

	if r.UserID <= 0 {
		errs.Add("user_id", "is required")
	}
	if r.StartID <= 0 {
		errs.Add("start_location_id", "is required")
	}
	if r.EndID <= 0 {
		errs.Add("end_location_id", "is required")
	}
	if r.StartID > 0 && r.StartID == r.EndID {
		errs.Add("end_location_id", "must differ from the start location")
	}
	if len(r.Stops) > v.cfg.MaxStopsPerRoute {
		errs.Addf("stops", "cannot have more than %d stops", v.cfg.MaxStopsPerRoute)
	}
	for _, s := range r.Stops {
		if s <= 0 {
			errs.Add("stops", "stop ids must be positive")
			break
		}
	}
	if r.Duration < 0 {
		errs.Add("duration", "must be non-negative")
	}
	if r.Duration > v.cfg.MaxRouteDuration {
		errs.Addf("duration", "cannot exceed %s", v.cfg.MaxRouteDuration)
	}

	return errs.Err()
}

// ValidateDiary checks the editable fields of a diary
func (v *TravelValidator) ValidateDiary(d *entities.Diary) error {
	errs := errors.NewValidationErrors()

	v.requireText(errs, "title", d.Title, v.cfg.MaxDiaryTitleLength)
	v.optionalText(errs, "content", d.Content, v.cfg.MaxDiaryContentLength)

	if d.LocationID <= 0 {
		errs.Add("location_id", "is required")
	}
	if strings.Contains(d.Content, "<script") || strings.Contains(d.Content, "javascript:") {
		errs.Add("content", "contains potentially malicious code")
	}

	v.validateTags(errs, d.Tags)
	v.validateImages(errs, d.Images)

	return errs.Err()
}

// ValidateImageURL checks a single image url
func (v *TravelValidator) ValidateImageURL(raw string) error {
	errs := errors.NewValidationErrors()
	v.validateURL(errs, "url", raw)
	return errs.Err()
}

func (v *TravelValidator) requireText(errs *errors.ValidationErrors, field, value string, max int) {
	if strings.TrimSpace(value) == "" {
		errs.Add(field, "is required")
		return
	}
	v.optionalText(errs, field, value, max)
}

func (v *TravelValidator) optionalText(errs *errors.ValidationErrors, field, value string, max int) {
	if n := utf8.RuneCountInString(value); n > max {
		errs.Addf(field, "exceeds maximum length of %d characters (got %d)", max, n)
	}
}

func (v *TravelValidator) validateTags(errs *errors.ValidationErrors, tags []string) {
	if len(tags) > v.cfg.MaxTagsPerLocation {
		errs.Addf("tags", "cannot have more than %d tags", v.cfg.MaxTagsPerLocation)
		return
	}
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > v.tagMaxLength {
			errs.Addf("tags", "tag %q exceeds maximum length of %d characters", tag, v.tagMaxLength)
			continue
		}
		if !tagPattern.MatchString(tag) {
			errs.Addf("tags", "tag %q contains invalid characters", tag)
		}
	}
}

func (v *TravelValidator) validateImages(errs *errors.ValidationErrors, images []string) {
	if len(images) > v.cfg.MaxImagesPerEntity {
		errs.Addf("images", "cannot have more than %d images", v.cfg.MaxImagesPerEntity)
		return
	}
	for _, img := range images {
		v.validateURL(errs, "images", img)
	}
}

func (v *TravelValidator) validateURL(errs *errors.ValidationErrors, field, raw string) {
	parsed, err := url.Parse(raw)
	if err != nil {
		errs.Addf(field, "invalid url %q", raw)
		return
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errs.Addf(field, "url %q must use http or https", raw)
		return
	}
	if parsed.Host == "" {
		errs.Addf(field, "url %q must have a host", raw)
	}
}

package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"tj-backend/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	return v
}

// ValidateStruct validates a struct based on its validation tags. Failures
// are returned as a VALIDATION error listing every offending field.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.NewValidationError(err.Error())
	}

	errs := errors.NewValidationErrors()
	for _, e := range fieldErrs {
		errs.Add(e.Field(), formatFieldError(e))
	}
	return errs.Err()
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	numeric := false
	switch e.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Float32, reflect.Float64:
		numeric = true
	}

	switch e.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		if numeric {
			return "must be at least " + e.Param()
		}
		return "must have at least " + e.Param() + " characters or items"
	case "max", "lte":
		if numeric {
			return "must be at most " + e.Param()
		}
		return "must have at most " + e.Param() + " characters or items"
	case "gt":
		return "must be greater than " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "url", "http_url":
		return "must be a valid URL"
	case "latitude":
		return "must be a latitude in [-90, 90]"
	case "longitude":
		return "must be a longitude in [-180, 180]"
	default:
		return "is invalid"
	}
}

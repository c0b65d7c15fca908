package common

import (
	"net/http"
	"strconv"

	"tj-backend/pkg/errors"
)

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// ExtractPaginationParams reads page and page_size from the query string.
// Absent parameters are left zero so the service applies its defaults; a
// parameter given explicitly must be a positive integer.
func ExtractPaginationParams(r *http.Request) (PaginationParams, error) {
	var params PaginationParams
	var err error
	if params.Page, err = positiveParam(r, "page"); err != nil {
		return params, err
	}
	if params.PageSize, err = positiveParam(r, "page_size"); err != nil {
		return params, err
	}
	return params, nil
}

func positiveParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, errors.NewValidationErrorf("%s must be a positive integer, got %q", name, raw)
	}
	return v, nil
}

// QueryInt reads an optional integer query parameter
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationErrorf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

// QueryFloat reads a required float query parameter
func QueryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errors.NewValidationErrorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.NewValidationErrorf("%s must be a number, got %q", name, raw)
	}
	return v, nil
}

// CalculateTotalPages calculates total number of pages
func CalculateTotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize > 0 {
		pages++
	}
	return pages
}

// BuildPaginationMeta builds pagination metadata
func BuildPaginationMeta(page, pageSize, total int) *PaginationInfo {
	totalPages := CalculateTotalPages(total, pageSize)

	return &PaginationInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

package queries

import (
	"tj-backend/application/services"
)

// Paging selects a 1-based page of a listing. Zero values mean the defaults.
type Paging struct {
	Page     int `json:"page" validate:"gte=0"`
	PageSize int `json:"page_size" validate:"gte=0"`
}

// Request converts the paging to a service page request
func (p Paging) Request() services.PageRequest {
	return services.PageRequest{Page: p.Page, PageSize: p.PageSize}
}

// Package common holds HTTP helpers shared by the routers.
package common

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"tj-backend/pkg/errors"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *MetaInfo   `json:"meta,omitempty"`
}

// MetaInfo contains metadata about the response
type MetaInfo struct {
	RequestID  string          `json:"request_id,omitempty"`
	Timestamp  string          `json:"timestamp,omitempty"`
	Version    string          `json:"version,omitempty"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
	Result     *ResultInfo     `json:"result,omitempty"`
}

// ResultInfo describes a capped, unpaged result
type ResultInfo struct {
	Count     int  `json:"count"`
	Limit     int  `json:"limit"`
	Truncated bool `json:"truncated"`
}

// PaginationInfo contains pagination details
type PaginationInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	RespondWithMeta(w, status, data, nil)
}

// RespondWithMeta sends a response with metadata
func RespondWithMeta(w http.ResponseWriter, status int, data interface{}, meta *MetaInfo) {
	response := APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta:    meta,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// RespondPage sends one page of a listing with pagination metadata
func RespondPage(w http.ResponseWriter, r *http.Request, items interface{}, page, pageSize, total int) {
	RespondWithMeta(w, http.StatusOK, items, &MetaInfo{
		RequestID:  ExtractRequestID(r),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Pagination: BuildPaginationMeta(page, pageSize, total),
	})
}

// RespondLimited sends a result capped at limit items. truncated reports
// that more matches existed.
func RespondLimited(w http.ResponseWriter, r *http.Request, items interface{}, count, limit int, truncated bool) {
	RespondWithMeta(w, http.StatusOK, items, &MetaInfo{
		RequestID: ExtractRequestID(r),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Result:    &ResultInfo{Count: count, Limit: limit, Truncated: truncated},
	})
}

// ExtractRequestID returns the request id assigned by the RequestID
// middleware, falling back to the incoming headers
func ExtractRequestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return r.Header.Get("X-Amzn-Trace-Id")
}

// ParseJSONBody parses a JSON request body with a size limit. Malformed or
// unknown fields are reported as validation errors.
func ParseJSONBody(w http.ResponseWriter, r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return errors.NewValidationErrorf("invalid request body: %v", err)
	}
	return nil
}

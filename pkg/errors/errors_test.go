package errors

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NewNotFoundError("location"), IsNotFound},
		{"validation", NewValidationError("radius must be non-negative"), IsValidation},
		{"unavailable", NewUnavailableError("store", stderrors.New("dial tcp")), IsUnavailable},
		{"conflict", NewConflictError("location is referenced"), IsConflict},
		{"forbidden", NewForbiddenError(""), IsForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(fmt.Errorf("handler: %w", tt.err)))
			assert.True(t, tt.check(Wrap(tt.err, "query")))
		})
	}
}

func TestFromStore(t *testing.T) {
	t.Run("no rows becomes not found", func(t *testing.T) {
		err := FromStore("route", sql.ErrNoRows)
		assert.True(t, IsNotFound(err))
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("driver failure becomes unavailable", func(t *testing.T) {
		cause := stderrors.New("connection refused")
		err := FromStore("route", cause)
		assert.True(t, IsUnavailable(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("classified errors pass through", func(t *testing.T) {
		orig := NewValidationError("bad")
		assert.Same(t, orig, FromStore("route", orig))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, FromStore("route", nil))
	})
}

func TestValidationErrors(t *testing.T) {
	v := NewValidationErrors()
	assert.NoError(t, v.Err())

	v.Add("name", "is required")
	v.Addf("latitude", "must be within [-90, 90], got %v", 91.0)

	err := v.Err()
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	fields := GetAppError(err).Details["fields"].(map[string][]string)
	assert.Equal(t, []string{"is required"}, fields["name"])
	assert.Len(t, v.Fields(), 2)
}

func TestErrorHandler_Handle(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", NewValidationError("bad"), http.StatusBadRequest},
		{"not found wrapped", fmt.Errorf("get: %w", NewNotFoundError("diary")), http.StatusNotFound},
		{"unavailable", NewUnavailableError("store", stderrors.New("down")), http.StatusServiceUnavailable},
		{"plain", stderrors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v2/locations/1", nil)
			h.Handle(rec, req, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestErrorHandler_UnavailableAsksClientsToRetry(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), FromStore("location", NewUnavailableError("store", stderrors.New("breaker open"))))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))

	rec = httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), NewNotFoundError("location"))
	assert.Empty(t, rec.Header().Get("Retry-After"))
}

func TestErrorHandler_MiddlewareRecoversPanics(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	})

	rec := httptest.NewRecorder()
	h.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

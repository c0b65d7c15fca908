package rest

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tj-backend/application/commands/bus"
	commandhandlers "tj-backend/application/commands/handlers"
	querybus "tj-backend/application/queries/bus"
	queryhandlers "tj-backend/application/queries/handlers"
	"tj-backend/application/services"
	"tj-backend/domain/config"
	"tj-backend/domain/core/validators"
	"tj-backend/infrastructure/cache"
	"tj-backend/infrastructure/persistence/memory"
	"tj-backend/interfaces/http/rest/middleware"
	"tj-backend/pkg/auth"
	"tj-backend/pkg/errors"
	"tj-backend/pkg/observability"
)

const testSecret = "router-test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *struct {
		Pagination *struct {
			Total int `json:"total"`
		} `json:"pagination"`
	} `json:"meta"`
}

type server struct {
	handler http.Handler
	metrics *observability.Collector
}

type serverOption func(*Options)

func withAuth(v *auth.JWTValidator) serverOption {
	return func(o *Options) {
		o.Auth = middleware.NewAuthenticator(v, true, nil, nil)
	}
}

func withLimiter(perMinute int) serverOption {
	return func(o *Options) { o.Limiter = auth.NewClientRateLimiter(perMinute) }
}

func withReadiness(p Pinger) serverOption {
	return func(o *Options) { o.Readiness = p }
}

func newServer(t *testing.T, options ...serverOption) *server {
	t.Helper()

	logger := zap.NewNop()
	repos := memory.NewRepositories()
	coord, err := cache.NewCoordinator(cache.Options{Capacity: 100})
	require.NoError(t, err)

	cfg := config.DefaultDomainConfig()
	validator := validators.NewTravelValidator(cfg)
	discovery := services.NewDiscoveryService(repos, coord, nil, cfg, nil, nil, logger)
	locations := services.NewLocationService(repos, discovery, coord, validator, cfg, logger)
	routes := services.NewRouteService(repos, discovery, coord, validator, cfg, logger)
	diaries := services.NewDiaryService(repos, discovery, coord, nil, validator, cfg, logger)
	favorites := services.NewFavoriteService(repos, coord, cfg, logger)

	commandBus := bus.NewCommandBus()
	require.NoError(t, commandhandlers.Register(commandBus, commandhandlers.Services{
		Locations: locations, Routes: routes, Diaries: diaries, Favorites: favorites,
	}))
	queryBus := querybus.NewQueryBus()
	require.NoError(t, queryhandlers.Register(queryBus, queryhandlers.Services{
		Locations: locations, Routes: routes, Diaries: diaries, Favorites: favorites,
	}))

	metrics := observability.NewCollector("tj")
	opts := Options{Metrics: metrics, EnableCORS: true}
	for _, o := range options {
		o(&opts)
	}

	errs := errors.NewErrorHandler(logger, false)
	return &server{
		handler: NewRouter(commandBus, queryBus, errs, opts, logger).Setup(),
		metrics: metrics,
	}
}

func (s *server) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func asUser(id int) map[string]string {
	return map[string]string{middleware.UserHeader: fmt.Sprint(id)}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) *envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if v != nil {
		require.NoError(t, json.Unmarshal(env.Data, v))
	}
	return &env
}

type locationBody struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Geohash string `json:"geohash"`
}

func (s *server) createLocation(t *testing.T, name string, lat, lon float64, headers map[string]string) locationBody {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v2/locations", map[string]interface{}{
		"name":      name,
		"city":      "Hangzhou",
		"latitude":  lat,
		"longitude": lon,
		"public":    true,
	}, headers)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var loc locationBody
	decode(t, rec, &loc)
	return loc
}

func TestRouter_HealthAndReady(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = s.do(t, http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type failingPinger struct{}

func (failingPinger) PingContext(ctx context.Context) error { return stderrors.New("connection refused") }

func TestRouter_ReadyReportsStoreOutage(t *testing.T) {
	s := newServer(t, withReadiness(failingPinger{}))

	rec := s.do(t, http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_LocationLifecycle(t *testing.T) {
	s := newServer(t)

	// Arrange
	loc := s.createLocation(t, "West Lake", 30.2450, 120.1500, nil)
	assert.NotZero(t, loc.ID)
	assert.Len(t, loc.Geohash, 7)
	path := fmt.Sprintf("/api/v2/locations/%d", loc.ID)

	// Act & Assert
	rec := s.do(t, http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v2", rec.Header().Get("X-API-Version"))

	rec = s.do(t, http.MethodPost, path+"/rating", map[string]float64{"value": 4}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, path+"/rating", map[string]float64{"value": 9}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, path+"/rating", map[string]interface{}{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, path+"/visit", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var visit struct {
		VisitCount int64 `json:"visit_count"`
	}
	decode(t, rec, &visit)
	assert.Equal(t, int64(1), visit.VisitCount)

	rec = s.do(t, http.MethodGet, "/api/v2/locations/nearby?lat=30.2451&lon=120.1501&radius=500", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hits []struct {
		Location       locationBody `json:"location"`
		DistanceMeters float64      `json:"distance_meters"`
	}
	decode(t, rec, &hits)
	require.Len(t, hits, 1)
	assert.Equal(t, loc.ID, hits[0].Location.ID)

	rec = s.do(t, http.MethodDelete, path, nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_LocationListings(t *testing.T) {
	s := newServer(t)
	s.createLocation(t, "West Lake", 30.24, 120.14, nil)
	s.createLocation(t, "Lingyin Temple", 30.24, 120.10, nil)

	rec := s.do(t, http.MethodGet, "/api/v2/locations?page_size=1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []locationBody
	env := decode(t, rec, &items)
	assert.Len(t, items, 1)
	require.NotNil(t, env.Meta)
	require.NotNil(t, env.Meta.Pagination)
	assert.Equal(t, 2, env.Meta.Pagination.Total)

	rec = s.do(t, http.MethodGet, "/api/v2/locations/search?q=temple", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Lingyin Temple", items[0].Name)

	rec = s.do(t, http.MethodGet, "/api/v2/locations/city/Hangzhou", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &items)
	assert.Len(t, items, 2)
}

func TestRouter_RejectsBadInput(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"explicit zero page", http.MethodGet, "/api/v2/locations?page=0", nil, http.StatusBadRequest},
		{"non numeric page size", http.MethodGet, "/api/v2/locations?page_size=ten", nil, http.StatusBadRequest},
		{"non numeric id", http.MethodGet, "/api/v2/locations/abc", nil, http.StatusBadRequest},
		{"missing latitude", http.MethodGet, "/api/v2/locations/nearby?lon=1&radius=10", nil, http.StatusBadRequest},
		{"negative radius", http.MethodGet, "/api/v2/locations/nearby?lat=1&lon=1&radius=-1", nil, http.StatusBadRequest},
		{"latitude out of range", http.MethodPost, "/api/v2/locations", map[string]interface{}{"name": "x", "city": "y", "latitude": 91}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/v2/locations", map[string]interface{}{"name": "x", "city": "y", "bogus": 1}, http.StatusBadRequest},
		{"too many stops", http.MethodGet, "/api/v2/routes/optimal?start=1&end=2&max_stops=21", nil, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/v2/routes/99", nil, http.StatusNotFound},
		{"unknown path", http.MethodGet, "/api/v2/nowhere", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body, nil)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestRouter_RoutesAndOptimal(t *testing.T) {
	s := newServer(t)
	a := s.createLocation(t, "A", 30.0, 120.0, nil)
	b := s.createLocation(t, "B", 30.1, 120.1, nil)

	body := map[string]interface{}{
		"name":              "A to B",
		"start_location_id": a.ID,
		"end_location_id":   b.ID,
		"duration":          "90m",
		"public":            true,
	}

	rec := s.do(t, http.MethodPost, "/api/v2/routes", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v2/routes", body, asUser(7))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var route struct {
		ID              int64   `json:"id"`
		UserID          int64   `json:"user_id"`
		Duration        string  `json:"duration"`
		DurationMinutes float64 `json:"duration_minutes"`
	}
	decode(t, rec, &route)
	assert.Equal(t, int64(7), route.UserID)
	assert.Equal(t, "1h30m0s", route.Duration)
	assert.Equal(t, 90.0, route.DurationMinutes)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v2/routes/%d/duration", route.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"minutes":90`)

	optimal := fmt.Sprintf("/routes/optimal?start=%d&end=%d", a.ID, b.ID)
	rec = s.do(t, http.MethodGet, "/api/v2"+optimal, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var paths []struct {
		RouteIDs     []int64 `json:"route_ids"`
		TotalMinutes float64 `json:"total_minutes"`
	}
	decode(t, rec, &paths)
	require.Len(t, paths, 1)
	assert.Equal(t, []int64{route.ID}, paths[0].RouteIDs)
	assert.Equal(t, 90.0, paths[0].TotalMinutes)

	rec = s.do(t, http.MethodGet, "/api/v2"+fmt.Sprintf("/routes/optimal?start=%d&end=%d", b.ID, a.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &paths)
	assert.Empty(t, paths)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v2/routes/%d", route.ID), nil, asUser(8))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v2/locations/%d", a.ID), nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v2/routes/%d", route.ID), nil, asUser(7))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_PrivateRoutesOnlyServeTheirOwner(t *testing.T) {
	s := newServer(t)
	a := s.createLocation(t, "A", 30.0, 120.0, nil)
	b := s.createLocation(t, "B", 30.1, 120.1, nil)

	rec := s.do(t, http.MethodPost, "/api/v2/routes", map[string]interface{}{
		"name":              "secret shortcut",
		"start_location_id": a.ID,
		"end_location_id":   b.ID,
		"duration":          "20m",
	}, asUser(7))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var route struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &route)
	path := fmt.Sprintf("/api/v2/routes/%d", route.ID)
	optimal := fmt.Sprintf("/routes/optimal?start=%d&end=%d", a.ID, b.ID)

	for _, headers := range []map[string]string{nil, asUser(8)} {
		rec = s.do(t, http.MethodGet, path, nil, headers)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		rec = s.do(t, http.MethodGet, path+"/duration", nil, headers)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = s.do(t, http.MethodGet, "/api/v2"+optimal, nil, headers)
		require.Equal(t, http.StatusOK, rec.Code)
		var paths []json.RawMessage
		decode(t, rec, &paths)
		assert.Empty(t, paths)
	}

	rec = s.do(t, http.MethodGet, "/api/v1"+optimal, nil, asUser(7))
	require.Equal(t, http.StatusOK, rec.Code)
	var legacy []json.RawMessage
	decode(t, rec, &legacy)
	assert.Empty(t, legacy)

	rec = s.do(t, http.MethodGet, path, nil, asUser(7))
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v2"+optimal, nil, asUser(7))
	require.Equal(t, http.StatusOK, rec.Code)
	var owned []struct {
		RouteIDs []int64 `json:"route_ids"`
	}
	decode(t, rec, &owned)
	require.Len(t, owned, 1)
	assert.Equal(t, []int64{route.ID}, owned[0].RouteIDs)
}

func TestRouter_NearbyReportsTruncation(t *testing.T) {
	s := newServer(t)
	s.createLocation(t, "Broken Bridge", 30.2590, 120.1500, nil)
	s.createLocation(t, "Leifeng Pagoda", 30.2310, 120.1490, nil)

	var result struct {
		Meta struct {
			Result struct {
				Count     int  `json:"count"`
				Limit     int  `json:"limit"`
				Truncated bool `json:"truncated"`
			} `json:"result"`
		} `json:"meta"`
	}

	rec := s.do(t, http.MethodGet, "/api/v2/locations/nearby?lat=30.245&lon=120.15&radius=5000&limit=1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Meta.Result.Count)
	assert.Equal(t, 1, result.Meta.Result.Limit)
	assert.True(t, result.Meta.Result.Truncated)

	rec = s.do(t, http.MethodGet, "/api/v2/locations/nearby?lat=30.245&lon=120.15&radius=5000", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Meta.Result.Count)
	assert.False(t, result.Meta.Result.Truncated)
}

func TestRouter_LegacyV1IsReadOnly(t *testing.T) {
	s := newServer(t)
	a := s.createLocation(t, "A", 30.0, 120.0, nil)

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/locations/%d", a.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v1", rec.Header().Get("X-API-Version"))
	assert.Equal(t, "true", rec.Header().Get("X-API-Deprecated"))

	rec = s.do(t, http.MethodGet, "/api/v1/locations/nearby?lat=30&lon=120&radius=10", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hits []json.RawMessage
	decode(t, rec, &hits)
	assert.Len(t, hits, 1)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/routes/optimal?start=%d&end=%d", a.ID, a.ID), nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/locations/%d", a.ID), nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/diaries/1", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_DiariesAndFavorites(t *testing.T) {
	s := newServer(t)
	loc := s.createLocation(t, "West Lake", 30.24, 120.14, nil)

	rec := s.do(t, http.MethodPost, "/api/v2/diaries", map[string]interface{}{
		"location_id": loc.ID,
		"title":       "Spring walk",
		"content":     "Willows along the causeway",
		"travel_date": "2024-04-02",
		"tags":        []string{"Spring"},
		"public":      true,
	}, asUser(1))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var diary struct {
		ID         int64     `json:"id"`
		TravelDate time.Time `json:"travel_date"`
	}
	decode(t, rec, &diary)
	assert.Equal(t, 2024, diary.TravelDate.Year())

	rec = s.do(t, http.MethodPost, "/api/v2/diaries", map[string]interface{}{
		"location_id": loc.ID,
		"title":       "Bad date",
		"travel_date": "yesterday",
	}, asUser(1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/v2/diaries/%d/like", diary.ID), nil, asUser(2))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"likes":1`)

	rec = s.do(t, http.MethodGet, "/api/v2/diaries/tag/spring", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []json.RawMessage
	decode(t, rec, &listed)
	assert.Len(t, listed, 1)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v2/diaries/%d", diary.ID), nil, asUser(2))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Favorites
	rec = s.do(t, http.MethodPost, "/api/v2/favorites", map[string]interface{}{"kind": "location", "target_id": loc.ID}, asUser(1))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v2/favorites", map[string]interface{}{"kind": "route", "target_id": 404}, asUser(1))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v2/favorites", map[string]interface{}{"kind": "planet", "target_id": 1}, asUser(1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v2/favorites", nil, asUser(1))
	require.Equal(t, http.StatusOK, rec.Code)
	var favs []struct {
		Kind     string `json:"kind"`
		TargetID int64  `json:"target_id"`
	}
	decode(t, rec, &favs)
	require.Len(t, favs, 1)
	assert.Equal(t, "location", favs[0].Kind)
	assert.Equal(t, loc.ID, favs[0].TargetID)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v2/favorites/location/%d", loc.ID), nil, asUser(1))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v2/favorites", nil, asUser(1))
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &favs)
	assert.Empty(t, favs)

	rec = s.do(t, http.MethodGet, "/api/v2/favorites", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_BearerAuthentication(t *testing.T) {
	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: testSecret, Issuer: "tj-backend"})
	require.NoError(t, err)
	s := newServer(t, withAuth(validator))

	token, err := validator.IssueToken(42, time.Hour)
	require.NoError(t, err)
	bearer := map[string]string{"Authorization": "Bearer " + token}

	body := map[string]interface{}{"name": "West Lake", "city": "Hangzhou", "latitude": 30.24, "longitude": 120.14, "public": true}

	rec := s.do(t, http.MethodPost, "/api/v2/locations", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The user header is ignored once tokens are checked
	rec = s.do(t, http.MethodPost, "/api/v2/locations", body, asUser(42))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v2/locations", body, map[string]string{"Authorization": "Bearer not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v2/locations", body, bearer)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v2/locations", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v2/diaries/popular", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v2/diaries/popular", nil, bearer)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	s := newServer(t, withLimiter(2))

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodGet, "/api/v2/locations", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := s.do(t, http.MethodGet, "/api/v2/locations", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// Another user has their own window
	rec = s.do(t, http.MethodGet, "/api/v2/locations", nil, asUser(3))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health checks are not limited
	rec = s.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_MetricsByRoutePattern(t *testing.T) {
	s := newServer(t)
	s.do(t, http.MethodGet, "/api/v2/locations/12", nil, nil)

	rec := s.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(),
		`tj_http_requests_total{method="GET",route="/api/v2/locations/{locationID}",status="404"} 1`),
		rec.Body.String())
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"tj-backend/application/commands"
	"tj-backend/application/commands/bus"
	"tj-backend/application/queries"
	"tj-backend/application/services"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/common"
	"tj-backend/pkg/errors"
	"tj-backend/pkg/utils"
)

// LocationHandler handles location-related HTTP requests
type LocationHandler struct {
	base
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(d Deps) *LocationHandler {
	return &LocationHandler{base: newBase(d)}
}

// CreateLocation handles POST /locations
func (h *LocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var fields commands.LocationFields
	if !h.decode(w, r, &fields) {
		return
	}

	res, ok := h.send(w, r, commands.CreateLocationCommand{LocationFields: fields})
	if !ok {
		return
	}
	h.respondLocation(w, r, http.StatusCreated, res)
}

// GetLocation handles GET /locations/{locationID}
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id, err := locationParam(r, "locationID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.ask(w, r, queries.GetLocationQuery{ID: id})
	if !ok {
		return
	}
	h.respondLocation(w, r, http.StatusOK, res)
}

// UpdateLocation handles PUT /locations/{locationID}
func (h *LocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, err := locationParam(r, "locationID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var fields commands.LocationFields
	if !h.decode(w, r, &fields) {
		return
	}

	res, ok := h.send(w, r, commands.UpdateLocationCommand{ID: id, LocationFields: fields})
	if !ok {
		return
	}
	h.respondLocation(w, r, http.StatusOK, res)
}

// DeleteLocation handles DELETE /locations/{locationID}
func (h *LocationHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, err := locationParam(r, "locationID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if _, ok := h.send(w, r, commands.DeleteLocationCommand{ID: id}); !ok {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListLocations handles GET /locations
func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, queries.ListLocationsQuery{
		Country:  r.URL.Query().Get("country"),
		City:     r.URL.Query().Get("city"),
		Category: r.URL.Query().Get("category"),
		Tags:     splitList(r.URL.Query().Get("tags")),
	})
}

// ListByCountry handles GET /locations/country/{country}
func (h *LocationHandler) ListByCountry(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, queries.ListLocationsQuery{Country: chi.URLParam(r, "country")})
}

// ListByCity handles GET /locations/city/{city}
func (h *LocationHandler) ListByCity(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, queries.ListLocationsQuery{City: chi.URLParam(r, "city")})
}

// ListByCategory handles GET /locations/category/{category}
func (h *LocationHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, queries.ListLocationsQuery{Category: chi.URLParam(r, "category")})
}

// ListByTags handles GET /locations/tags?tags=a,b
func (h *LocationHandler) ListByTags(w http.ResponseWriter, r *http.Request) {
	tags := splitList(r.URL.Query().Get("tags"))
	if len(tags) == 0 {
		h.fail(w, r, errors.NewValidationError("tags is required"))
		return
	}
	h.list(w, r, queries.ListLocationsQuery{Tags: tags})
}

func (h *LocationHandler) list(w http.ResponseWriter, r *http.Request, q queries.ListLocationsQuery) {
	paging, err := common.ExtractPaginationParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q.Paging = queries.Paging{Page: paging.Page, PageSize: paging.PageSize}

	res, ok := h.ask(w, r, q)
	if !ok {
		return
	}
	h.respondPage(w, r, res)
}

// SearchLocations handles GET /locations/search?q=
func (h *LocationHandler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	paging, err := common.ExtractPaginationParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.ask(w, r, queries.SearchLocationsQuery{
		Text:   strings.TrimSpace(r.URL.Query().Get("q")),
		Paging: queries.Paging{Page: paging.Page, PageSize: paging.PageSize},
	})
	if !ok {
		return
	}
	h.respondPage(w, r, res)
}

// PopularLocations handles GET /locations/popular?limit=
func (h *LocationHandler) PopularLocations(w http.ResponseWriter, r *http.Request) {
	limit, err := common.QueryInt(r, "limit", 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if limit < 0 {
		h.fail(w, r, errors.NewValidationErrorf("limit must be positive, got %d", limit))
		return
	}

	res, ok := h.ask(w, r, queries.PopularLocationsQuery{Limit: limit})
	if !ok {
		return
	}
	locs, ok := res.([]*entities.Location)
	if !ok {
		h.unexpected(w, r, res)
		return
	}
	common.RespondJSON(w, http.StatusOK, NewLocationResponses(locs))
}

// NearbyLocations handles GET /locations/nearby?lat=&lon=&radius=
func (h *LocationHandler) NearbyLocations(w http.ResponseWriter, r *http.Request) {
	q, err := NearbyQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.ask(w, r, q)
	if !ok {
		return
	}
	hits, ok := res.(services.NearbyResult)
	if !ok {
		h.unexpected(w, r, res)
		return
	}
	common.RespondLimited(w, r, NewNearbyResponses(hits.Items), len(hits.Items), hits.Limit, hits.Truncated)
}

// NearbyQuery reads lat, lon, radius (meters) and limit
func NearbyQuery(r *http.Request) (queries.NearbyLocationsQuery, error) {
	lat, err := common.QueryFloat(r, "lat")
	if err != nil {
		return queries.NearbyLocationsQuery{}, err
	}
	lon, err := common.QueryFloat(r, "lon")
	if err != nil {
		return queries.NearbyLocationsQuery{}, err
	}
	radius, err := common.QueryFloat(r, "radius")
	if err != nil {
		return queries.NearbyLocationsQuery{}, err
	}
	if err := valueobjects.ValidateLatLon(lat, lon); err != nil {
		return queries.NearbyLocationsQuery{}, err
	}
	if radius < 0 {
		return queries.NearbyLocationsQuery{}, errors.NewValidationErrorf("radius must be non-negative, got %v", radius)
	}
	limit, err := common.QueryInt(r, "limit", 0)
	if err != nil {
		return queries.NearbyLocationsQuery{}, err
	}
	return queries.NearbyLocationsQuery{Latitude: lat, Longitude: lon, RadiusMeters: radius, Limit: limit}, nil
}

// RecordVisit handles POST /locations/{locationID}/visit
func (h *LocationHandler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	id, err := locationParam(r, "locationID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.send(w, r, commands.RecordVisitCommand{ID: id})
	if !ok {
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"location_id": id,
		"visit_count": res,
	})
}

// RateLocation handles POST /locations/{locationID}/rating
func (h *LocationHandler) RateLocation(w http.ResponseWriter, r *http.Request) {
	id, err := locationParam(r, "locationID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req RatingRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.send(w, r, commands.RateLocationCommand{ID: id, Value: *req.Value})
	if !ok {
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"location_id": id,
		"rating":      res,
	})
}

// AddImage handles POST /locations/{locationID}/images
func (h *LocationHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	h.editImage(w, r, func(id valueobjects.LocationID, url string) bus.Command {
		return commands.AddLocationImageCommand{ID: id, URL: url}
	})
}

// RemoveImage handles DELETE /locations/{locationID}/images
func (h *LocationHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	h.editImage(w, r, func(id valueobjects.LocationID, url string) bus.Command {
		return commands.RemoveLocationImageCommand{ID: id, URL: url}
	})
}

func (h *LocationHandler) editImage(w http.ResponseWriter, r *http.Request, build func(valueobjects.LocationID, string) bus.Command) {
	id, err := locationParam(r, "locationID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req ImageRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, ok := h.send(w, r, build(id, strings.TrimSpace(req.URL)))
	if !ok {
		return
	}
	h.respondLocation(w, r, http.StatusOK, res)
}

func (h *LocationHandler) respondLocation(w http.ResponseWriter, r *http.Request, status int, res interface{}) {
	loc, ok := res.(*entities.Location)
	if !ok {
		h.unexpected(w, r, res)
		return
	}
	common.RespondJSON(w, status, NewLocationResponse(loc))
}

func (h *LocationHandler) respondPage(w http.ResponseWriter, r *http.Request, res interface{}) {
	page, ok := res.(services.PageResult[*entities.Location])
	if !ok {
		h.unexpected(w, r, res)
		return
	}
	common.RespondPage(w, r, NewLocationResponses(page.Items), page.Page, page.PageSize, page.Total)
}

// splitList splits a comma separated query value, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

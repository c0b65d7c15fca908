package handlers

import (
	"net/http"
	"time"

	"tj-backend/application/commands"
	"tj-backend/application/queries"
	querybus "tj-backend/application/queries/bus"
	"tj-backend/application/services"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/domain/routing"
	"tj-backend/pkg/common"
	"tj-backend/pkg/errors"
)

// RouteHandler handles route-related HTTP requests
type RouteHandler struct {
	base
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(d Deps) *RouteHandler {
	return &RouteHandler{base: newBase(d)}
}

// CreateRoute handles POST /routes
func (h *RouteHandler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req RouteRequest
	if !h.decode(w, r, &req) {
		return
	}
	fields, err := req.Fields()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.send(w, r, commands.CreateRouteCommand{UserID: userID, RouteFields: fields})
	if !ok {
		return
	}
	h.respondRoute(w, r, http.StatusCreated, res)
}

// GetRoute handles GET /routes/{routeID}
func (h *RouteHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	id, err := routeParam(r, "routeID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.ask(w, r, queries.GetRouteQuery{Requester: optionalUser(r), ID: id})
	if !ok {
		return
	}
	h.respondRoute(w, r, http.StatusOK, res)
}

// UpdateRoute handles PUT /routes/{routeID}
func (h *RouteHandler) UpdateRoute(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := routeParam(r, "routeID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req RouteRequest
	if !h.decode(w, r, &req) {
		return
	}
	fields, err := req.Fields()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.send(w, r, commands.UpdateRouteCommand{UserID: userID, ID: id, RouteFields: fields})
	if !ok {
		return
	}
	h.respondRoute(w, r, http.StatusOK, res)
}

// DeleteRoute handles DELETE /routes/{routeID}
func (h *RouteHandler) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := routeParam(r, "routeID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if _, ok := h.send(w, r, commands.DeleteRouteCommand{UserID: userID, ID: id}); !ok {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDuration handles GET /routes/{routeID}/duration
func (h *RouteHandler) GetDuration(w http.ResponseWriter, r *http.Request) {
	id, err := routeParam(r, "routeID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.ask(w, r, queries.RouteDurationQuery{Requester: optionalUser(r), ID: id})
	if !ok {
		return
	}
	d, ok := res.(time.Duration)
	if !ok {
		h.unexpected(w, r, res)
		return
	}
	common.RespondJSON(w, http.StatusOK, DurationResponse{RouteID: id, Duration: d.String(), Minutes: d.Minutes()})
}

// ListByUser handles GET /routes/user/{userID}. Private routes are included
// only for their owner.
func (h *RouteHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := userParam(r, "userID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	paging, err := common.ExtractPaginationParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.ask(w, r, queries.RoutesByUserQuery{
		Requester: optionalUser(r),
		UserID:    userID,
		Paging:    queries.Paging{Page: paging.Page, PageSize: paging.PageSize},
	})
	if !ok {
		return
	}
	h.respondPage(w, r, res)
}

// ListByStart handles GET /routes/start/{locationID}
func (h *RouteHandler) ListByStart(w http.ResponseWriter, r *http.Request) {
	h.listByLocation(w, r, func(id valueobjects.LocationID, p queries.Paging) querybus.Query {
		return queries.RoutesByStartQuery{LocationID: id, Paging: p}
	})
}

// ListByEnd handles GET /routes/end/{locationID}
func (h *RouteHandler) ListByEnd(w http.ResponseWriter, r *http.Request) {
	h.listByLocation(w, r, func(id valueobjects.LocationID, p queries.Paging) querybus.Query {
		return queries.RoutesByEndQuery{LocationID: id, Paging: p}
	})
}

func (h *RouteHandler) listByLocation(w http.ResponseWriter, r *http.Request, build func(valueobjects.LocationID, queries.Paging) querybus.Query) {
	id, err := locationParam(r, "locationID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	paging, err := common.ExtractPaginationParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.ask(w, r, build(id, queries.Paging{Page: paging.Page, PageSize: paging.PageSize}))
	if !ok {
		return
	}
	h.respondPage(w, r, res)
}

// OptimalRoutes handles GET /routes/optimal?start=&end=&max_stops=
func (h *RouteHandler) OptimalRoutes(w http.ResponseWriter, r *http.Request) {
	q, err := OptimalQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.ask(w, r, q)
	if !ok {
		return
	}
	paths, ok := res.([]routing.PathResult)
	if !ok {
		h.unexpected(w, r, res)
		return
	}
	common.RespondJSON(w, http.StatusOK, NewPathResponses(paths))
}

// OptimalQuery reads start, end and max_stops. An absent max_stops selects
// the configured default. The caller, if any, is the requester.
func OptimalQuery(r *http.Request) (queries.OptimalRoutesQuery, error) {
	start, err := valueobjects.ParseLocationID(r.URL.Query().Get("start"))
	if err != nil {
		return queries.OptimalRoutesQuery{}, err
	}
	end, err := valueobjects.ParseLocationID(r.URL.Query().Get("end"))
	if err != nil {
		return queries.OptimalRoutesQuery{}, err
	}
	maxStops := -1
	if r.URL.Query().Get("max_stops") != "" {
		if maxStops, err = common.QueryInt(r, "max_stops", 0); err != nil {
			return queries.OptimalRoutesQuery{}, err
		}
		if maxStops < 0 {
			return queries.OptimalRoutesQuery{}, errors.NewValidationErrorf("max_stops must be non-negative, got %d", maxStops)
		}
	}
	return queries.OptimalRoutesQuery{Requester: optionalUser(r), StartID: start, EndID: end, MaxStops: maxStops}, nil
}

// PopularRoutes handles GET /routes/popular?limit=
func (h *RouteHandler) PopularRoutes(w http.ResponseWriter, r *http.Request) {
	limit, err := common.QueryInt(r, "limit", 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if limit < 0 {
		h.fail(w, r, errors.NewValidationErrorf("limit must be positive, got %d", limit))
		return
	}

	res, ok := h.ask(w, r, queries.PopularRoutesQuery{Limit: limit})
	if !ok {
		return
	}
	h.respondList(w, r, res)
}

// RecommendedRoutes handles GET /routes/recommended?limit=
func (h *RouteHandler) RecommendedRoutes(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	limit, err := common.QueryInt(r, "limit", 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.ask(w, r, queries.RecommendedRoutesQuery{UserID: userID, Limit: limit})
	if !ok {
		return
	}
	h.respondList(w, r, res)
}

func (h *RouteHandler) respondRoute(w http.ResponseWriter, r *http.Request, status int, res interface{}) {
	route, ok := res.(*entities.Route)
	if !ok {
		h.unexpected(w, r, res)
		return
	}
	common.RespondJSON(w, status, NewRouteResponse(route))
}

func (h *RouteHandler) respondList(w http.ResponseWriter, r *http.Request, res interface{}) {
	routes, ok := res.([]*entities.Route)
	if !ok {
		h.unexpected(w, r, res)
		return
	}
	common.RespondJSON(w, http.StatusOK, NewRouteResponses(routes))
}

func (h *RouteHandler) respondPage(w http.ResponseWriter, r *http.Request, res interface{}) {
	page, ok := res.(services.PageResult[*entities.Route])
	if !ok {
		h.unexpected(w, r, res)
		return
	}
	common.RespondPage(w, r, NewRouteResponses(page.Items), page.Page, page.PageSize, page.Total)
}

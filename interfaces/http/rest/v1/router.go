// Package v1 serves the read-only legacy API. New clients use /api/v2.
package v1

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"tj-backend/application/queries"
	querybus "tj-backend/application/queries/bus"
	"tj-backend/application/services"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/domain/routing"
	"tj-backend/interfaces/http/rest/handlers"
	"tj-backend/pkg/common"
	"tj-backend/pkg/errors"
)

type legacy struct {
	queryBus *querybus.QueryBus
	errs     *errors.ErrorHandler
	logger   *zap.Logger
}

// NewRouter creates the v1 API router
func NewRouter(queryBus *querybus.QueryBus, errs *errors.ErrorHandler, logger *zap.Logger) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if errs == nil {
		errs = errors.NewErrorHandler(logger, false)
	}
	h := &legacy{queryBus: queryBus, errs: errs, logger: logger}

	router := mux.NewRouter()
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.Use(versionHeaders)

	v1.HandleFunc("/locations/nearby", h.nearby).Methods(http.MethodGet)
	v1.HandleFunc("/locations/{id:[0-9]+}", h.getLocation).Methods(http.MethodGet)
	v1.HandleFunc("/routes/optimal", h.optimal).Methods(http.MethodGet)
	v1.HandleFunc("/health", healthCheck).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errs.HandleStatus(w, r, http.StatusNotFound, "not available in v1, use /api/v2")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errs.HandleStatus(w, r, http.StatusMethodNotAllowed, "v1 is read-only")
	})
	return router
}

func (h *legacy) getLocation(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.ParseLocationID(mux.Vars(r)["id"])
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	res, err := h.queryBus.Ask(r.Context(), queries.GetLocationQuery{ID: id})
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	loc, ok := res.(*entities.Location)
	if !ok {
		h.errs.Handle(w, r, errors.NewInternalError("unexpected location result"))
		return
	}
	common.RespondJSON(w, http.StatusOK, handlers.NewLocationResponse(loc))
}

func (h *legacy) nearby(w http.ResponseWriter, r *http.Request) {
	q, err := handlers.NearbyQuery(r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	res, err := h.queryBus.Ask(r.Context(), q)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	hits, ok := res.(services.NearbyResult)
	if !ok {
		h.errs.Handle(w, r, errors.NewInternalError("unexpected nearby result"))
		return
	}
	common.RespondLimited(w, r, handlers.NewNearbyResponses(hits.Items), len(hits.Items), hits.Limit, hits.Truncated)
}

func (h *legacy) optimal(w http.ResponseWriter, r *http.Request) {
	q, err := handlers.OptimalQuery(r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	res, err := h.queryBus.Ask(r.Context(), q)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	paths, ok := res.([]routing.PathResult)
	if !ok {
		h.errs.Handle(w, r, errors.NewInternalError("unexpected optimal routes result"))
		return
	}
	common.RespondJSON(w, http.StatusOK, handlers.NewPathResponses(paths))
}

// versionHeaders adds API version headers to responses
func versionHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		w.Header().Set("X-API-Latest", "v2")
		w.Header().Set("X-API-Deprecated", "true")
		next.ServeHTTP(w, r)
	})
}

// healthCheck provides a health check endpoint
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","version":"v1"}`))
}

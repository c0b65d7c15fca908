// Package rest exposes the travel API over HTTP.
package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"tj-backend/application/commands/bus"
	querybus "tj-backend/application/queries/bus"
	"tj-backend/interfaces/http/rest/handlers"
	"tj-backend/interfaces/http/rest/middleware"
	v1 "tj-backend/interfaces/http/rest/v1"
	"tj-backend/pkg/auth"
	"tj-backend/pkg/common"
	"tj-backend/pkg/errors"
	"tj-backend/pkg/observability"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options are the router's collaborators and switches. Nil collaborators
// disable the matching feature.
type Options struct {
	Auth        *middleware.Authenticator
	Limiter     *auth.ClientRateLimiter
	Metrics     *observability.Collector
	Readiness   Pinger
	EnableCORS  bool
	CORSOrigins []string
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errs       *errors.ErrorHandler
	opts       Options
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *errors.ErrorHandler,
	opts Options,
	logger *zap.Logger,
) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if errs == nil {
		errs = errors.NewErrorHandler(logger, false)
	}
	if opts.Auth == nil {
		opts.Auth = middleware.NewAuthenticator(nil, false, errs, logger)
	}
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		errs:       errs,
		opts:       opts,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger(rt.logger))
	router.Use(rt.errs.Middleware)
	router.Use(middleware.Metrics(rt.opts.Metrics))
	router.Use(versionMiddleware)

	if rt.opts.EnableCORS {
		origins := rt.opts.CORSOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", middleware.UserHeader},
			ExposedHeaders:   []string{"X-Request-ID", "X-API-Version"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errs.HandleStatus(w, r, http.StatusNotFound, "resource not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errs.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.opts.Metrics.Handler())
	}

	// API v1 routes (legacy, read-only)
	router.Mount("/api/v1", v1.NewRouter(rt.queryBus, rt.errs, rt.logger))

	// API v2 routes (current)
	deps := handlers.Deps{
		CommandBus: rt.commandBus,
		QueryBus:   rt.queryBus,
		Errors:     rt.errs,
		Logger:     rt.logger,
	}
	router.Route("/api/v2", func(r chi.Router) {
		r.Use(rt.opts.Auth.Identify)
		r.Use(middleware.RateLimit(rt.opts.Limiter, rt.errs, rt.logger))

		r.Route("/locations", func(r chi.Router) {
			h := handlers.NewLocationHandler(deps)
			r.Get("/", h.ListLocations)
			r.Get("/search", h.SearchLocations)
			r.Get("/country/{country}", h.ListByCountry)
			r.Get("/city/{city}", h.ListByCity)
			r.Get("/category/{category}", h.ListByCategory)
			r.Get("/tags", h.ListByTags)
			r.Get("/popular", h.PopularLocations)
			r.Get("/nearby", h.NearbyLocations)
			r.Get("/{locationID}", h.GetLocation)

			w := rt.protected(r)
			w.Post("/", h.CreateLocation)
			w.Put("/{locationID}", h.UpdateLocation)
			w.Delete("/{locationID}", h.DeleteLocation)
			w.Post("/{locationID}/visit", h.RecordVisit)
			w.Post("/{locationID}/rating", h.RateLocation)
			w.Post("/{locationID}/images", h.AddImage)
			w.Delete("/{locationID}/images", h.RemoveImage)
		})

		r.Route("/routes", func(r chi.Router) {
			h := handlers.NewRouteHandler(deps)
			r.Get("/optimal", h.OptimalRoutes)
			r.Get("/popular", h.PopularRoutes)
			r.Get("/user/{userID}", h.ListByUser)
			r.Get("/start/{locationID}", h.ListByStart)
			r.Get("/end/{locationID}", h.ListByEnd)
			r.Get("/{routeID}", h.GetRoute)
			r.Get("/{routeID}/duration", h.GetDuration)

			w := rt.protected(r)
			w.Get("/recommended", h.RecommendedRoutes)
			w.Post("/", h.CreateRoute)
			w.Put("/{routeID}", h.UpdateRoute)
			w.Delete("/{routeID}", h.DeleteRoute)
		})

		r.Route("/diaries", func(r chi.Router) {
			h := handlers.NewDiaryHandler(deps)
			w := rt.protected(r)
			w.Post("/", h.CreateDiary)
			w.Get("/popular", h.PopularDiaries)
			w.Get("/user/{userID}", h.ListByUser)
			w.Get("/location/{locationID}", h.ListByLocation)
			w.Get("/tag/{tag}", h.ListByTag)
			w.Get("/{diaryID}", h.GetDiary)
			w.Put("/{diaryID}", h.UpdateDiary)
			w.Delete("/{diaryID}", h.DeleteDiary)
			w.Post("/{diaryID}/like", h.LikeDiary)
		})

		r.Route("/favorites", func(r chi.Router) {
			h := handlers.NewFavoriteHandler(deps)
			w := rt.protected(r)
			w.Get("/", h.ListFavorites)
			w.Post("/", h.AddFavorite)
			w.Delete("/{kind}/{targetID}", h.RemoveFavorite)
		})
	})

	return router
}

// protected returns r guarded by a required caller when token
// authentication is enabled
func (rt *Router) protected(r chi.Router) chi.Router {
	if rt.opts.Auth.Enabled() {
		return r.With(rt.opts.Auth.Require)
	}
	return r
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports whether the store answers
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if rt.opts.Readiness != nil {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := rt.opts.Readiness.PingContext(ctx); err != nil {
			rt.logger.Warn("Readiness check failed", zap.Error(err))
			common.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// versionMiddleware adds API version headers to all responses
func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/v2") {
			w.Header().Set("X-API-Version", "v2")
			w.Header().Set("X-API-Latest", "v2")
		}
		next.ServeHTTP(w, r)
	})
}

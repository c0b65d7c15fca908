// This injector is maintained by hand to match the provider set in wire.go.
// Running go generate replaces it with Wire's output.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package di

import (
	"context"

	"tj-backend/infrastructure/config"
)

// Injectors from wire.go:

// InitializeContainer creates a fully wired container. The returned cleanup
// closes the database pool.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	db, cleanup, err := ProvideDB(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	collector := ProvideMetrics(cfg)
	repositories := ProvideRepositories(db, collector, logger)
	coordinator, err := ProvideCache(cfg, collector, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	eventPublisher, err := ProvideEventPublisher(ctx, cfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	domainConfig := ProvideDomainConfig(cfg)
	tracer := ProvideTracer(cfg)
	discoveryService := ProvideDiscoveryService(repositories, coordinator, eventPublisher, domainConfig, collector, tracer, logger)
	travelValidator := ProvideValidator(domainConfig)
	locationService := ProvideLocationService(repositories, discoveryService, coordinator, travelValidator, domainConfig, logger)
	routeService := ProvideRouteService(repositories, discoveryService, coordinator, travelValidator, domainConfig, logger)
	diaryService := ProvideDiaryService(repositories, discoveryService, coordinator, eventPublisher, travelValidator, domainConfig, logger)
	favoriteService := ProvideFavoriteService(repositories, coordinator, domainConfig, logger)
	commandBus, err := ProvideCommandBus(locationService, routeService, diaryService, favoriteService, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	queryBus, err := ProvideQueryBus(locationService, routeService, diaryService, favoriteService, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	clientRateLimiter := ProvideRateLimiter(cfg)
	errorHandler := ProvideErrorHandler(cfg, logger)
	jwtValidator, err := ProvideJWTValidator(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	authenticator := ProvideAuthenticator(cfg, jwtValidator, errorHandler, logger)
	pinger := ProvideReadiness(db)
	options := ProvideRouterOptions(cfg, authenticator, clientRateLimiter, collector, pinger)
	router := ProvideRouter(commandBus, queryBus, errorHandler, options, logger)
	container := &Container{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Discovery:   discoveryService,
		Cache:       coordinator,
		CommandBus:  commandBus,
		QueryBus:    queryBus,
		Metrics:     collector,
		RateLimiter: clientRateLimiter,
		Router:      router,
	}
	return container, func() {
		cleanup()
	}, nil
}

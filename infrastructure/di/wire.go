//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"tj-backend/application/ports"
	"tj-backend/infrastructure/cache"
	"tj-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideMetrics,
	ProvideTracer,
	ProvideCache,
	wire.Bind(new(ports.CacheCoordinator), new(*cache.Coordinator)),
	ProvideDB,
	ProvideRepositories,
	ProvideReadiness,
	ProvideEventPublisher,
	ProvideValidator,
	ProvideDiscoveryService,
	ProvideLocationService,
	ProvideRouteService,
	ProvideDiaryService,
	ProvideFavoriteService,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideJWTValidator,
	ProvideErrorHandler,
	ProvideAuthenticator,
	ProvideRateLimiter,
	ProvideRouterOptions,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The returned cleanup
// closes the database pool.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}

package di

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tj-backend/application/commands/bus"
	commandhandlers "tj-backend/application/commands/handlers"
	"tj-backend/application/ports"
	querybus "tj-backend/application/queries/bus"
	queryhandlers "tj-backend/application/queries/handlers"
	"tj-backend/application/services"
	domainconfig "tj-backend/domain/config"
	"tj-backend/domain/core/validators"
	"tj-backend/infrastructure/cache"
	"tj-backend/infrastructure/config"
	"tj-backend/infrastructure/messaging/eventbridge"
	"tj-backend/infrastructure/persistence/memory"
	"tj-backend/infrastructure/persistence/mysql"
	"tj-backend/interfaces/http/rest"
	"tj-backend/interfaces/http/rest/middleware"
	"tj-backend/pkg/auth"
	"tj-backend/pkg/errors"
	"tj-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("environment", cfg.Environment)), nil
}

// ProvideDomainConfig derives the domain limits from the configuration
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return cfg.Domain()
}

// ProvideMetrics creates the Prometheus collector, or nil when metrics are
// disabled
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("tj")
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer("tj-backend", cfg.EnableTracing)
}

// ProvideCache creates the cache coordinator
func ProvideCache(cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) (*cache.Coordinator, error) {
	return cache.NewCoordinator(cache.Options{
		Capacity:   cfg.CacheCapacity,
		DefaultTTL: cfg.CacheTTL,
		Observer:   metrics,
		Logger:     logger,
	})
}

// ProvideDB opens the MySQL pool. With no DSN configured it returns a nil
// pool and the in-memory store is used instead.
func ProvideDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sql.DB, func(), error) {
	if cfg.MySQLDSN == "" {
		logger.Warn("No MySQL DSN configured, using the in-memory store")
		return nil, func() {}, nil
	}

	db, err := mysql.Open(ctx, mysql.Options{
		DSN:             cfg.MySQLDSN,
		MaxOpenConns:    cfg.MySQLMaxOpenConns,
		MaxIdleConns:    cfg.MySQLMaxIdleConns,
		ConnMaxLifetime: cfg.MySQLConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}
	if cfg.MigrateOnStart {
		if err := mysql.Bootstrap(ctx, db, logger); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate schema: %w", err)
		}
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", zap.Error(err))
		}
	}
	return db, cleanup, nil
}

// ProvideRepositories selects the store of record
func ProvideRepositories(db *sql.DB, metrics *observability.Collector, logger *zap.Logger) ports.Repositories {
	if db == nil {
		return memory.NewRepositories()
	}
	breaker := mysql.NewBreaker(mysql.DefaultBreakerConfig(), metrics, logger)
	return mysql.NewRepositories(db, breaker, metrics, logger)
}

// ProvideReadiness exposes the pool to the readiness probe
func ProvideReadiness(db *sql.DB) rest.Pinger {
	if db == nil {
		return nil
	}
	return db
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideEventPublisher publishes to EventBridge when a bus is configured
// and logs events otherwise. AWS configuration is only loaded for the bus.
func ProvideEventPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.EventPublisher, error) {
	if cfg.EventBusName == "" {
		return eventbridge.NewLogPublisher(logger), nil
	}
	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, logger), nil
}

// ProvideValidator creates the travel input validator
func ProvideValidator(cfg *domainconfig.DomainConfig) *validators.TravelValidator {
	return validators.NewTravelValidator(cfg)
}

// ProvideDiscoveryService creates the owner of the derived views
func ProvideDiscoveryService(
	repos ports.Repositories,
	coord ports.CacheCoordinator,
	publisher ports.EventPublisher,
	cfg *domainconfig.DomainConfig,
	metrics *observability.Collector,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *services.DiscoveryService {
	return services.NewDiscoveryService(repos, coord, publisher, cfg, metrics, tracer, logger)
}

// ProvideLocationService creates the location service
func ProvideLocationService(
	repos ports.Repositories,
	discovery *services.DiscoveryService,
	coord ports.CacheCoordinator,
	validator *validators.TravelValidator,
	cfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *services.LocationService {
	return services.NewLocationService(repos, discovery, coord, validator, cfg, logger)
}

// ProvideRouteService creates the route service
func ProvideRouteService(
	repos ports.Repositories,
	discovery *services.DiscoveryService,
	coord ports.CacheCoordinator,
	validator *validators.TravelValidator,
	cfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *services.RouteService {
	return services.NewRouteService(repos, discovery, coord, validator, cfg, logger)
}

// ProvideDiaryService creates the diary service
func ProvideDiaryService(
	repos ports.Repositories,
	discovery *services.DiscoveryService,
	coord ports.CacheCoordinator,
	publisher ports.EventPublisher,
	validator *validators.TravelValidator,
	cfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *services.DiaryService {
	return services.NewDiaryService(repos, discovery, coord, publisher, validator, cfg, logger)
}

// ProvideFavoriteService creates the favorite service
func ProvideFavoriteService(
	repos ports.Repositories,
	coord ports.CacheCoordinator,
	cfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *services.FavoriteService {
	return services.NewFavoriteService(repos, coord, cfg, logger)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	locations *services.LocationService,
	routes *services.RouteService,
	diaries *services.DiaryService,
	favorites *services.FavoriteService,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(bus.LoggingMiddleware(logger))
	err := commandhandlers.Register(commandBus, commandhandlers.Services{
		Locations: locations,
		Routes:    routes,
		Diaries:   diaries,
		Favorites: favorites,
	})
	if err != nil {
		return nil, fmt.Errorf("register command handlers: %w", err)
	}
	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	locations *services.LocationService,
	routes *services.RouteService,
	diaries *services.DiaryService,
	favorites *services.FavoriteService,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(querybus.SlowQueryMiddleware(logger, slowQueryThreshold))
	err := queryhandlers.Register(queryBus, queryhandlers.Services{
		Locations: locations,
		Routes:    routes,
		Diaries:   diaries,
		Favorites: favorites,
	})
	if err != nil {
		return nil, fmt.Errorf("register query handlers: %w", err)
	}
	return queryBus, nil
}

// ProvideJWTValidator creates the token validator, or nil when no secret is
// configured
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if cfg.JWTSecret == "" {
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideErrorHandler creates the HTTP error renderer. Internal details are
// only exposed outside production.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *errors.ErrorHandler {
	return errors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideAuthenticator creates the API authenticator
func ProvideAuthenticator(
	cfg *config.Config,
	validator *auth.JWTValidator,
	errs *errors.ErrorHandler,
	logger *zap.Logger,
) *middleware.Authenticator {
	return middleware.NewAuthenticator(validator, cfg.EnableAuth, errs, logger)
}

// ProvideRateLimiter creates the per-client rate limiter, or nil when rate
// limiting is off
func ProvideRateLimiter(cfg *config.Config) *auth.ClientRateLimiter {
	if cfg.RateLimitPerMinute <= 0 {
		return nil
	}
	return auth.NewClientRateLimiter(cfg.RateLimitPerMinute)
}

// ProvideRouterOptions gathers the router's collaborators
func ProvideRouterOptions(
	cfg *config.Config,
	authenticator *middleware.Authenticator,
	limiter *auth.ClientRateLimiter,
	metrics *observability.Collector,
	readiness rest.Pinger,
) rest.Options {
	return rest.Options{
		Auth:        authenticator,
		Limiter:     limiter,
		Metrics:     metrics,
		Readiness:   readiness,
		EnableCORS:  cfg.EnableCORS,
		CORSOrigins: splitOrigins(cfg.CORSOrigins),
	}
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *errors.ErrorHandler,
	opts rest.Options,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(commandBus, queryBus, errs, opts, logger)
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

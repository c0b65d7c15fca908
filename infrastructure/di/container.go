// Package di wires the application from configuration.
package di

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"tj-backend/application/commands/bus"
	querybus "tj-backend/application/queries/bus"
	"tj-backend/application/services"
	"tj-backend/infrastructure/cache"
	"tj-backend/infrastructure/config"
	"tj-backend/interfaces/http/rest"
	"tj-backend/pkg/auth"
	"tj-backend/pkg/observability"
)

// Queries slower than this are logged at Warn
const slowQueryThreshold = 200 * time.Millisecond

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *sql.DB
	Discovery   *services.DiscoveryService
	Cache       *cache.Coordinator
	CommandBus  *bus.CommandBus
	QueryBus    *querybus.QueryBus
	Metrics     *observability.Collector
	RateLimiter *auth.ClientRateLimiter
	Router      *rest.Router
}

// Start loads the derived views from the store and starts background
// maintenance. It returns once the container is ready to serve; the
// background work stops with ctx.
func (c *Container) Start(ctx context.Context) error {
	start := time.Now()
	if err := c.Discovery.Hydrate(ctx); err != nil {
		return err
	}
	c.Logger.Info("Derived views loaded", zap.Duration("duration", time.Since(start)))

	go c.Cache.Run(ctx, c.Config.CacheSweepInterval)
	if c.RateLimiter != nil {
		go c.RateLimiter.Run(ctx, time.Minute)
	}
	return nil
}

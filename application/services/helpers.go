package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tj-backend/application/ports"
	"tj-backend/domain/config"
	"tj-backend/domain/events"
	"tj-backend/pkg/errors"
)

// cached reads key through the cache, computing it with fn on a miss
func cached[T any](ctx context.Context, cache ports.CacheCoordinator, key ports.CacheKey, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	v, err := cache.GetOrCompute(ctx, key, ttl, func(ctx context.Context) (interface{}, error) {
		res, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return res, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// publish sends event when a publisher is configured. Delivery failures are
// logged and never fail the mutation that raised the event.
func publish(ctx context.Context, publisher ports.EventPublisher, logger *zap.Logger, event events.DomainEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish event",
			zap.String("event_type", event.GetEventType()),
			zap.String("aggregate_id", event.GetAggregateID()),
			zap.Error(err),
		)
	}
}

// PageRequest is a 1-based page selection as received from callers
type PageRequest struct {
	Page     int
	PageSize int
}

// PageResult is one page of a listing
type PageResult[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// resolvePage validates req and converts it to a store window. Zero values
// select the first page and the default size; the size is capped.
func resolvePage(req PageRequest, cfg *config.DomainConfig) (ports.Page, PageRequest, error) {
	if req.Page < 0 {
		return ports.Page{}, req, errors.NewValidationErrorf("page must be positive, got %d", req.Page)
	}
	if req.PageSize < 0 {
		return ports.Page{}, req, errors.NewValidationErrorf("page_size must be positive, got %d", req.PageSize)
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = cfg.DefaultPageSize
	}
	if req.PageSize > cfg.MaxPageSize {
		req.PageSize = cfg.MaxPageSize
	}
	return ports.Page{Offset: (req.Page - 1) * req.PageSize, Limit: req.PageSize}, req, nil
}

func resolveLimit(limit int, cfg *config.DomainConfig) (int, error) {
	if limit < 0 {
		return 0, errors.NewValidationErrorf("limit must be positive, got %d", limit)
	}
	if limit == 0 {
		return cfg.DefaultPopularN, nil
	}
	if limit > cfg.MaxPageSize {
		return cfg.MaxPageSize, nil
	}
	return limit, nil
}

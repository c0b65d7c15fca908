package ports

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CacheNamespace groups cached results by the entity type they are derived
// from. Any mutation of that entity type invalidates the whole namespace.
type CacheNamespace string

const (
	NamespaceLocations CacheNamespace = "locations"
	NamespaceRoutes    CacheNamespace = "routes"
	NamespaceRatings   CacheNamespace = "ratings"
	NamespaceDiaries   CacheNamespace = "diaries"
	NamespaceFavorites CacheNamespace = "favorites"
)

// CacheKey identifies a cached result: the operation, its canonical
// arguments and the namespaces the result depends on.
type CacheKey struct {
	Operation string
	Args      string
	DependsOn []CacheNamespace
}

// NewCacheKey builds a key whose Args is the canonical rendering of args
func NewCacheKey(operation string, dependsOn []CacheNamespace, args ...interface{}) CacheKey {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%v", a)
	}
	return CacheKey{
		Operation: operation,
		Args:      strings.Join(parts, "|"),
		DependsOn: dependsOn,
	}
}

// String renders the key as operation(args)
func (k CacheKey) String() string {
	return k.Operation + "(" + k.Args + ")"
}

// ComputeFunc produces the value for a cache miss
type ComputeFunc func(ctx context.Context) (interface{}, error)

// CacheCoordinator is a read-through cache with single-flight misses and
// namespace invalidation. Cached values are shared between callers and must
// not be mutated.
type CacheCoordinator interface {
	// GetOrCompute returns the cached value for key or runs fn once for all
	// concurrent callers of the same key. Failed computations are not cached.
	GetOrCompute(ctx context.Context, key CacheKey, ttl time.Duration, fn ComputeFunc) (interface{}, error)

	// Invalidate evicts every entry depending on ns and returns how many
	// entries were dropped
	Invalidate(ns CacheNamespace) int

	// InvalidateKey evicts a single entry
	InvalidateKey(key CacheKey)
}

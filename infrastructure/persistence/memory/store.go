// Package memory provides in-memory repositories used for development and
// tests. Every read returns a copy, so callers may mutate results freely.
package memory

import (
	"sort"
	"strings"

	"tj-backend/application/ports"
)

// NewRepositories creates an empty set of in-memory repositories
func NewRepositories() ports.Repositories {
	return ports.Repositories{
		Locations: NewLocationRepository(),
		Routes:    NewRouteRepository(),
		Diaries:   NewDiaryRepository(),
		Favorites: NewFavoriteRepository(),
	}
}

// window applies a page to an already filtered and sorted result set
func window[T any](items []T, page ports.Page) []T {
	if page.Offset >= len(items) {
		return []T{}
	}
	items = items[page.Offset:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}

func sortedKeys[K ~int64, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func limitTo[T any](items []T, limit int) []T {
	if limit > 0 && limit < len(items) {
		return items[:limit]
	}
	return items
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

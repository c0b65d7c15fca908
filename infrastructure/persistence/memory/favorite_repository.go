package memory

import (
	"context"
	"sort"
	"sync"

	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
)

// FavoriteRepository is an in-memory ports.FavoriteRepository keyed by user
// and target
type FavoriteRepository struct {
	mu    sync.RWMutex
	items map[valueobjects.UserID]map[string]*entities.Favorite
}

// NewFavoriteRepository creates an empty repository
func NewFavoriteRepository() *FavoriteRepository {
	return &FavoriteRepository{items: make(map[valueobjects.UserID]map[string]*entities.Favorite)}
}

// Add keeps the original timestamp when the favorite already exists
func (r *FavoriteRepository) Add(ctx context.Context, fav *entities.Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byTarget, ok := r.items[fav.UserID]
	if !ok {
		byTarget = make(map[string]*entities.Favorite)
		r.items[fav.UserID] = byTarget
	}
	if _, exists := byTarget[fav.Target.String()]; exists {
		return nil
	}
	c := *fav
	byTarget[fav.Target.String()] = &c
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID valueobjects.UserID, target valueobjects.FavoriteTarget) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if byTarget, ok := r.items[userID]; ok {
		delete(byTarget, target.String())
	}
	return nil
}

// ListByUser returns favorites newest first
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID valueobjects.UserID) ([]*entities.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Favorite, 0, len(r.items[userID]))
	for _, fav := range r.items[userID] {
		c := *fav
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Target.String() < out[j].Target.String()
	})
	return out, nil
}

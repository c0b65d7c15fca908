package memory

import (
	"context"
	"sort"
	"sync"

	"tj-backend/application/ports"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/errors"
)

// DiaryRepository is an in-memory ports.DiaryRepository
type DiaryRepository struct {
	mu     sync.RWMutex
	items  map[valueobjects.DiaryID]*entities.Diary
	nextID valueobjects.DiaryID
}

// NewDiaryRepository creates an empty repository
func NewDiaryRepository() *DiaryRepository {
	return &DiaryRepository{items: make(map[valueobjects.DiaryID]*entities.Diary)}
}

func (r *DiaryRepository) Create(ctx context.Context, diary *entities.Diary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	diary.ID = r.nextID
	r.items[diary.ID] = diary.Clone()
	return nil
}

func (r *DiaryRepository) Update(ctx context.Context, diary *entities.Diary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[diary.ID]; !ok {
		return errors.NewNotFoundErrorID("diary", diary.ID)
	}
	r.items[diary.ID] = diary.Clone()
	return nil
}

func (r *DiaryRepository) GetByID(ctx context.Context, id valueobjects.DiaryID) (*entities.Diary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	diary, ok := r.items[id]
	if !ok {
		return nil, errors.NewNotFoundErrorID("diary", id)
	}
	return diary.Clone(), nil
}

func (r *DiaryRepository) Delete(ctx context.Context, id valueobjects.DiaryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return errors.NewNotFoundErrorID("diary", id)
	}
	delete(r.items, id)
	return nil
}

// List returns matches newest travel date first
func (r *DiaryRepository) List(ctx context.Context, filter ports.DiaryFilter) ([]*entities.Diary, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*entities.Diary
	for _, diary := range r.items {
		if matchDiary(diary, filter) {
			matches = append(matches, diary)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].TravelDate.Equal(matches[j].TravelDate) {
			return matches[i].TravelDate.After(matches[j].TravelDate)
		}
		return matches[i].ID > matches[j].ID
	})

	page := window(matches, filter.Page)
	out := make([]*entities.Diary, len(page))
	for i, diary := range page {
		out[i] = diary.Clone()
	}
	return out, len(matches), nil
}

func matchDiary(diary *entities.Diary, f ports.DiaryFilter) bool {
	if f.PublicOnly && !diary.Public {
		return false
	}
	if !f.UserID.IsZero() && diary.UserID != f.UserID {
		return false
	}
	if !f.LocationID.IsZero() && diary.LocationID != f.LocationID {
		return false
	}
	if f.Tag != "" && !diary.HasTag(f.Tag) {
		return false
	}
	return true
}

// Popular orders public diaries by likes, ties by id
func (r *DiaryRepository) Popular(ctx context.Context, limit int) ([]*entities.Diary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entities.Diary
	for _, diary := range r.items {
		if diary.Public {
			out = append(out, diary.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Likes != out[j].Likes {
			return out[i].Likes > out[j].Likes
		}
		return out[i].ID < out[j].ID
	})
	return limitTo(out, limit), nil
}

func (r *DiaryRepository) IncrementLikes(ctx context.Context, id valueobjects.DiaryID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	diary, ok := r.items[id]
	if !ok {
		return 0, errors.NewNotFoundErrorID("diary", id)
	}
	diary.Likes++
	return diary.Likes, nil
}

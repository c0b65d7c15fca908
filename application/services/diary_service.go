package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"tj-backend/application/ports"
	"tj-backend/domain/config"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/validators"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/domain/events"
	"tj-backend/pkg/errors"
)

// DiaryService manages user travel diaries
type DiaryService struct {
	repo      ports.DiaryRepository
	discovery *DiscoveryService
	cache     ports.CacheCoordinator
	publisher ports.EventPublisher
	validator *validators.TravelValidator
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewDiaryService creates a new diary service
func NewDiaryService(
	repos ports.Repositories,
	discovery *DiscoveryService,
	cache ports.CacheCoordinator,
	publisher ports.EventPublisher,
	validator *validators.TravelValidator,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *DiaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiaryService{
		repo:      repos.Diaries,
		discovery: discovery,
		cache:     cache,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Create stores a new diary about an existing location
func (s *DiaryService) Create(ctx context.Context, userID valueobjects.UserID, details entities.DiaryDetails) (*entities.Diary, error) {
	diary := entities.NewDiary(userID, details)
	if err := s.check(diary); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, diary); err != nil {
		return nil, errors.Wrap(errors.FromStore("diary", err), "create diary")
	}
	s.changed(ctx, diary)
	return diary, nil
}

func (s *DiaryService) check(diary *entities.Diary) error {
	if err := s.validator.ValidateDiary(diary); err != nil {
		return err
	}
	if !s.discovery.HasLocation(diary.LocationID) {
		return errors.NewNotFoundErrorID("location", diary.LocationID)
	}
	return nil
}

func (s *DiaryService) changed(ctx context.Context, diary *entities.Diary) {
	s.cache.Invalidate(ports.NamespaceDiaries)
	publish(ctx, s.publisher, s.logger, events.NewDiaryChanged(diary.ID, diary.UserID, diary.LocationID, time.Now()))
}

// Get returns a diary. Private diaries are only visible to their owner.
func (s *DiaryService) Get(ctx context.Context, requester valueobjects.UserID, id valueobjects.DiaryID) (*entities.Diary, error) {
	key := ports.NewCacheKey("diary", []ports.CacheNamespace{ports.NamespaceDiaries}, id)
	diary, err := cached(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) (*entities.Diary, error) {
		d, err := s.repo.GetByID(ctx, id)
		return d, errors.FromStore("diary", err)
	})
	if err != nil {
		return nil, err
	}
	if !diary.Public && !diary.OwnedBy(requester) {
		return nil, errors.NewForbiddenError("diary is private")
	}
	return diary, nil
}

// Update replaces a diary's editable fields. Only the owner may update it.
func (s *DiaryService) Update(ctx context.Context, requester valueobjects.UserID, id valueobjects.DiaryID, details entities.DiaryDetails) (*entities.Diary, error) {
	diary, err := s.owned(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	diary.Update(details)
	if err := s.check(diary); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, diary); err != nil {
		return nil, errors.Wrap(errors.FromStore("diary", err), "update diary")
	}
	s.changed(ctx, diary)
	return diary, nil
}

// Delete removes a diary. Only the owner may delete it.
func (s *DiaryService) Delete(ctx context.Context, requester valueobjects.UserID, id valueobjects.DiaryID) error {
	diary, err := s.owned(ctx, requester, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.FromStore("diary", err), "delete diary")
	}
	s.cache.Invalidate(ports.NamespaceDiaries)
	publish(ctx, s.publisher, s.logger, events.NewDiaryDeleted(id, diary.UserID, time.Now()))
	return nil
}

func (s *DiaryService) owned(ctx context.Context, requester valueobjects.UserID, id valueobjects.DiaryID) (*entities.Diary, error) {
	diary, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.FromStore("diary", err)
	}
	if !diary.OwnedBy(requester) {
		return nil, errors.NewForbiddenError("diary belongs to another user")
	}
	return diary, nil
}

// ByUser lists a user's diaries. Other users only see the public ones.
func (s *DiaryService) ByUser(ctx context.Context, requester, userID valueobjects.UserID, req PageRequest) (PageResult[*entities.Diary], error) {
	return s.list(ctx, ports.DiaryFilter{UserID: userID, PublicOnly: requester != userID}, req)
}

// ByLocation lists public diaries about a location
func (s *DiaryService) ByLocation(ctx context.Context, id valueobjects.LocationID, req PageRequest) (PageResult[*entities.Diary], error) {
	return s.list(ctx, ports.DiaryFilter{LocationID: id, PublicOnly: true}, req)
}

// ByTag lists public diaries carrying tag
func (s *DiaryService) ByTag(ctx context.Context, tag string, req PageRequest) (PageResult[*entities.Diary], error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return PageResult[*entities.Diary]{}, errors.NewValidationError("tag is required")
	}
	return s.list(ctx, ports.DiaryFilter{Tag: tag, PublicOnly: true}, req)
}

func (s *DiaryService) list(ctx context.Context, filter ports.DiaryFilter, req PageRequest) (PageResult[*entities.Diary], error) {
	page, req, err := resolvePage(req, s.cfg)
	if err != nil {
		return PageResult[*entities.Diary]{}, err
	}
	filter.Page = page

	key := ports.NewCacheKey("diaries", []ports.CacheNamespace{ports.NamespaceDiaries},
		filter.UserID, filter.LocationID, filter.Tag, filter.PublicOnly, page.Offset, page.Limit)
	return cached(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) (PageResult[*entities.Diary], error) {
		items, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return PageResult[*entities.Diary]{}, errors.FromStore("diary", err)
		}
		return PageResult[*entities.Diary]{Items: items, Page: req.Page, PageSize: req.PageSize, Total: total}, nil
	})
}

// Popular returns the most liked public diaries
func (s *DiaryService) Popular(ctx context.Context, limit int) ([]*entities.Diary, error) {
	limit, err := resolveLimit(limit, s.cfg)
	if err != nil {
		return nil, err
	}
	key := ports.NewCacheKey("diaries.popular", []ports.CacheNamespace{ports.NamespaceDiaries}, limit)
	return cached(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) ([]*entities.Diary, error) {
		diaries, err := s.repo.Popular(ctx, limit)
		return diaries, errors.FromStore("diary", err)
	})
}

// Like adds one like to a visible diary and returns the new total
func (s *DiaryService) Like(ctx context.Context, requester valueobjects.UserID, id valueobjects.DiaryID) (int64, error) {
	diary, err := s.Get(ctx, requester, id)
	if err != nil {
		return 0, err
	}
	likes, err := s.repo.IncrementLikes(ctx, id)
	if err != nil {
		return 0, errors.FromStore("diary", err)
	}
	s.changed(ctx, diary)
	return likes, nil
}

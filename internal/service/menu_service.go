package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bistro/internal/cache"
	apperrors "bistro/internal/errors"
	"bistro/internal/model"
	"bistro/internal/repository"
)

const (
	menuCacheKey = "menu:all"
	menuCacheTTL = 5 * time.Minute
)

// MenuService manages the catalog. The full list is cached in redis and
// dropped on every mutation.
type MenuService interface {
	Create(ctx context.Context, item *model.MenuItem) (primitive.ObjectID, error)
	Import(ctx context.Context, items []model.MenuItem) (int, error)
	List(ctx context.Context) ([]model.MenuItem, error)
	// Get returns nil, nil when no item has id.
	Get(ctx context.Context, id string) (*model.MenuItem, error)
	Update(ctx context.Context, id string, item *model.MenuItem) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type menuService struct {
	repo  repository.MenuRepository
	cache *cache.Client
}

// NewMenuService builds a MenuService with repository and cache.
func NewMenuService(repo repository.MenuRepository, cache *cache.Client) MenuService {
	return &menuService{repo: repo, cache: cache}
}

func (s *menuService) Create(ctx context.Context, item *model.MenuItem) (primitive.ObjectID, error) {
	if item.Price.IsNegative() {
		return primitive.NilObjectID, apperrors.ErrInvalidAmount
	}
	id, err := s.repo.Create(ctx, item)
	if err != nil {
		return primitive.NilObjectID, err
	}
	_ = s.cache.Delete(ctx, menuCacheKey)
	return id, nil
}

func (s *menuService) Import(ctx context.Context, items []model.MenuItem) (int, error) {
	for _, item := range items {
		if item.Price.IsNegative() {
			return 0, apperrors.ErrInvalidAmount
		}
	}
	n, err := s.repo.InsertMany(ctx, items)
	if err != nil {
		return 0, err
	}
	_ = s.cache.Delete(ctx, menuCacheKey)
	return n, nil
}

func (s *menuService) List(ctx context.Context) ([]model.MenuItem, error) {
	if data, _ := s.cache.Get(ctx, menuCacheKey); data != nil {
		var cached []model.MenuItem
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(items); err == nil {
		_ = s.cache.Set(ctx, menuCacheKey, payload, menuCacheTTL)
	}
	return items, nil
}

func (s *menuService) Get(ctx context.Context, id string) (*model.MenuItem, error) {
	oid, err := model.ParseID(id)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, oid)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return item, err
}

func (s *menuService) Update(ctx context.Context, id string, item *model.MenuItem) (int64, error) {
	oid, err := model.ParseID(id)
	if err != nil {
		return 0, err
	}
	if item.Price.IsNegative() {
		return 0, apperrors.ErrInvalidAmount
	}
	n, err := s.repo.Update(ctx, oid, item)
	if err != nil {
		return 0, err
	}
	_ = s.cache.Delete(ctx, menuCacheKey)
	return n, nil
}

func (s *menuService) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := model.ParseID(id)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.Delete(ctx, oid)
	if err != nil {
		return 0, err
	}
	_ = s.cache.Delete(ctx, menuCacheKey)
	return n, nil
}

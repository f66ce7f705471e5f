package service

import (
	"context"

	"bistro/internal/model"
	"bistro/internal/repository"
)

// ReviewService exposes the read-only review list.
type ReviewService interface {
	List(ctx context.Context) ([]model.Review, error)
	Import(ctx context.Context, reviews []model.Review) (int, error)
}

type reviewService struct {
	repo repository.ReviewRepository
}

func NewReviewService(repo repository.ReviewRepository) ReviewService {
	return &reviewService{repo: repo}
}

func (s *reviewService) List(ctx context.Context) ([]model.Review, error) {
	return s.repo.List(ctx)
}

// Import bulk-loads reviews; used by the seed tool.
func (s *reviewService) Import(ctx context.Context, reviews []model.Review) (int, error) {
	return s.repo.InsertMany(ctx, reviews)
}

package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "bistro/internal/errors"
	"bistro/internal/model"
	"bistro/internal/repository"
)

// CartService handles pending cart lines. Lines are keyed by owner email
// and are not checked against the caller's identity.
type CartService interface {
	Add(ctx context.Context, line *model.CartLine) (primitive.ObjectID, error)
	ListByEmail(ctx context.Context, email string) ([]model.CartLine, error)
	Remove(ctx context.Context, id string) (int64, error)
}

type cartService struct {
	repo repository.CartRepository
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository) CartService {
	return &cartService{repo: repo}
}

func (s *cartService) Add(ctx context.Context, line *model.CartLine) (primitive.ObjectID, error) {
	if line.Price.IsNegative() {
		return primitive.NilObjectID, apperrors.ErrInvalidAmount
	}
	return s.repo.Create(ctx, line)
}

func (s *cartService) ListByEmail(ctx context.Context, email string) ([]model.CartLine, error) {
	return s.repo.ListByEmail(ctx, email)
}

func (s *cartService) Remove(ctx context.Context, id string) (int64, error) {
	oid, err := model.ParseID(id)
	if err != nil {
		return 0, err
	}
	return s.repo.Delete(ctx, oid)
}

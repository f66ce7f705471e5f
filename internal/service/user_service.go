package service

import (
	"context"
	"errors"
	"strings"

	apperrors "bistro/internal/errors"
	"bistro/internal/model"
	"bistro/internal/repository"
)

// UserService manages identities and their roles.
type UserService interface {
	// Upsert creates user on first sign-in. A second call with the same
	// email returns the stored record unchanged and created=false.
	Upsert(ctx context.Context, user *model.User) (*model.User, bool, error)
	List(ctx context.Context) ([]model.User, error)
	IsAdmin(ctx context.Context, email string) (bool, error)
	PromoteToAdmin(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService. Roles are always read from the
// store; nothing here is cached.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Upsert(ctx context.Context, user *model.User) (*model.User, bool, error) {
	user.Email = strings.TrimSpace(user.Email)
	// role is server-assigned
	user.Role = model.RoleUser
	return s.repo.Upsert(ctx, user)
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) IsAdmin(ctx context.Context, email string) (bool, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}

func (s *userService) PromoteToAdmin(ctx context.Context, id string) (int64, error) {
	oid, err := model.ParseID(id)
	if err != nil {
		return 0, err
	}
	return s.repo.SetRole(ctx, oid, model.RoleAdmin)
}

func (s *userService) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := model.ParseID(id)
	if err != nil {
		return 0, err
	}
	return s.repo.Delete(ctx, oid)
}

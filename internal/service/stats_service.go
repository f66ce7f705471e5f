package service

import (
	"context"

	"bistro/internal/model"
	"bistro/internal/repository"
)

// StatsService computes the admin dashboard aggregates.
type StatsService interface {
	// Summary counts are estimated and may lag concurrent writes.
	Summary(ctx context.Context) (*model.AdminStats, error)
	// CategoryBreakdown groups every purchased menu item reference by the
	// item's current category and price. Order is unspecified.
	CategoryBreakdown(ctx context.Context) ([]model.CategoryStat, error)
}

type statsService struct {
	users    repository.UserRepository
	menu     repository.MenuRepository
	payments repository.PaymentRepository
}

// NewStatsService creates a new stats service.
func NewStatsService(users repository.UserRepository, menu repository.MenuRepository, payments repository.PaymentRepository) StatsService {
	return &statsService{users: users, menu: menu, payments: payments}
}

func (s *statsService) Summary(ctx context.Context) (*model.AdminStats, error) {
	users, err := s.users.EstimatedCount(ctx)
	if err != nil {
		return nil, err
	}
	menuItems, err := s.menu.EstimatedCount(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.payments.EstimatedCount(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.payments.TotalRevenue(ctx)
	if err != nil {
		return nil, err
	}

	return &model.AdminStats{
		Users:     users,
		MenuItems: menuItems,
		Orders:    orders,
		Revenue:   revenue,
	}, nil
}

func (s *statsService) CategoryBreakdown(ctx context.Context) ([]model.CategoryStat, error) {
	return s.payments.CategoryBreakdown(ctx)
}

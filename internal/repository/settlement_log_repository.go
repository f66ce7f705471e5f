package repository

import (
	"context"

	"gorm.io/gorm"

	"bistro/internal/model"
)

// SettlementLogRepository defines settlement audit persistence operations.
type SettlementLogRepository interface {
	Create(ctx context.Context, log *model.SettlementLog) error
	CreateBatch(ctx context.Context, logs []model.SettlementLog) error
}

type settlementLogRepository struct {
	db *gorm.DB
}

// NewSettlementLogRepository creates a new settlement log repository.
func NewSettlementLogRepository(db *gorm.DB) SettlementLogRepository {
	return &settlementLogRepository{db: db}
}

func (r *settlementLogRepository) Create(ctx context.Context, log *model.SettlementLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// CreateBatch inserts logs in chunks of 100.
func (r *settlementLogRepository) CreateBatch(ctx context.Context, logs []model.SettlementLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(logs, 100).Error
}

// NopSettlementLogRepository discards every row. Used when no MySQL DSN is configured.
type NopSettlementLogRepository struct{}

func (NopSettlementLogRepository) Create(context.Context, *model.SettlementLog) error { return nil }

func (NopSettlementLogRepository) CreateBatch(context.Context, []model.SettlementLog) error {
	return nil
}

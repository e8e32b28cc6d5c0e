package repository

import (
	"context"

	"github.com/watchledger/backend/internal/model"
	"gorm.io/gorm"
)

type generationLogRepository struct {
	db *gorm.DB
}

// NewGenerationLogRepository 创建生成记录仓储
func NewGenerationLogRepository(db *gorm.DB) GenerationLogRepository {
	return &generationLogRepository{db: db}
}

// Create 新增生成记录
func (r *generationLogRepository) Create(ctx context.Context, log *model.GenerationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListRecent 返回最近的生成记录
func (r *generationLogRepository) ListRecent(ctx context.Context, limit int) ([]model.GenerationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []model.GenerationLog
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

package repository

import (
	"context"
	"errors"

	"github.com/watchledger/backend/internal/model"
	"gorm.io/gorm"
)

var watchOrderColumns = map[string]bool{
	"id":              true,
	"brand":           true,
	"model_name":      true,
	"model_reference": true,
	"year":            true,
	"created_at":      true,
	"updated_at":      true,
}

type watchRepository struct {
	db *gorm.DB
}

// NewWatchRepository 创建手表仓储
func NewWatchRepository(db *gorm.DB) WatchRepository {
	return &watchRepository{db: db}
}

func (r *watchRepository) Create(ctx context.Context, watch *model.Watch) error {
	return r.db.WithContext(ctx).Create(watch).Error
}

func (r *watchRepository) Get(ctx context.Context, id uint) (*model.Watch, error) {
	var watch model.Watch
	err := r.db.WithContext(ctx).First(&watch, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &watch, nil
}

func (r *watchRepository) List(ctx context.Context, opts ListOptions) ([]model.Watch, error) {
	order, err := orderClause(watchOrderColumns, opts.OrderBy, opts.Desc)
	if err != nil {
		return nil, err
	}
	tx := r.db.WithContext(ctx).Model(&model.Watch{})
	if opts.Brand != "" {
		tx = tx.Where("brand = ?", opts.Brand)
	}
	if opts.Limit > 0 {
		tx = tx.Limit(opts.Limit)
	}
	var watches []model.Watch
	err = tx.Order(order).Find(&watches).Error
	return watches, err
}

func (r *watchRepository) Save(ctx context.Context, watch *model.Watch) error {
	return r.db.WithContext(ctx).Save(watch).Error
}

func (r *watchRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Watch{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *watchRepository) ListWithModelReference(ctx context.Context) ([]model.Watch, error) {
	var watches []model.Watch
	err := r.db.WithContext(ctx).
		Where("model_reference IS NOT NULL").
		Order("id ASC").
		Find(&watches).Error
	return watches, err
}

package repository

import (
	"context"
	"errors"

	"github.com/watchledger/backend/internal/model"
	"gorm.io/gorm"
)

var promptOrderColumns = map[string]bool{
	"id":         true,
	"name":       true,
	"purpose":    true,
	"ai_model":   true,
	"created_at": true,
	"updated_at": true,
}

type promptRepository struct {
	db *gorm.DB
}

// NewPromptRepository 创建提示词仓储
func NewPromptRepository(db *gorm.DB) PromptRepository {
	return &promptRepository{db: db}
}

func (r *promptRepository) Create(ctx context.Context, prompt *model.Prompt) error {
	return r.db.WithContext(ctx).Create(prompt).Error
}

func (r *promptRepository) Get(ctx context.Context, id uint) (*model.Prompt, error) {
	var prompt model.Prompt
	err := r.db.WithContext(ctx).First(&prompt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &prompt, nil
}

// List 按 purpose / ai_model 等值过滤
func (r *promptRepository) List(ctx context.Context, filter PromptFilter) ([]model.Prompt, error) {
	order, err := orderClause(promptOrderColumns, filter.OrderBy, filter.Desc)
	if err != nil {
		return nil, err
	}
	tx := r.db.WithContext(ctx).Model(&model.Prompt{})
	if filter.Purpose != "" {
		tx = tx.Where("purpose = ?", filter.Purpose)
	}
	if filter.AIModel != "" {
		tx = tx.Where("ai_model = ?", filter.AIModel)
	}
	var prompts []model.Prompt
	err = tx.Order(order).Find(&prompts).Error
	return prompts, err
}

func (r *promptRepository) Save(ctx context.Context, prompt *model.Prompt) error {
	return r.db.WithContext(ctx).Save(prompt).Error
}

func (r *promptRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Prompt{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type styleGuideRepository struct {
	db *gorm.DB
}

// NewStyleGuideRepository 创建风格指南仓储
func NewStyleGuideRepository(db *gorm.DB) StyleGuideRepository {
	return &styleGuideRepository{db: db}
}

func (r *styleGuideRepository) Create(ctx context.Context, guide *model.StyleGuide) error {
	return r.db.WithContext(ctx).Create(guide).Error
}

func (r *styleGuideRepository) Get(ctx context.Context, id uint) (*model.StyleGuide, error) {
	var guide model.StyleGuide
	err := r.db.WithContext(ctx).First(&guide, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &guide, nil
}

func (r *styleGuideRepository) GetByName(ctx context.Context, name string) (*model.StyleGuide, error) {
	var guide model.StyleGuide
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&guide).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &guide, nil
}

func (r *styleGuideRepository) List(ctx context.Context) ([]model.StyleGuide, error) {
	var guides []model.StyleGuide
	err := r.db.WithContext(ctx).Order("name ASC").Find(&guides).Error
	return guides, err
}

func (r *styleGuideRepository) Save(ctx context.Context, guide *model.StyleGuide) error {
	return r.db.WithContext(ctx).Save(guide).Error
}

func (r *styleGuideRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.StyleGuide{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

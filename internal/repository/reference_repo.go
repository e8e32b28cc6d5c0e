package repository

import (
	"context"
	"errors"

	"github.com/watchledger/backend/internal/model"
	"gorm.io/gorm"
)

var referenceOrderColumns = map[string]bool{
	"id":             true,
	"brand":          true,
	"reference_name": true,
	"created_at":     true,
	"updated_at":     true,
}

type referenceRepository struct {
	db *gorm.DB
}

// NewReferenceRepository 创建型号仓储
func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) Create(ctx context.Context, ref *model.Reference) error {
	return r.db.WithContext(ctx).Create(ref).Error
}

func (r *referenceRepository) Get(ctx context.Context, id uint) (*model.Reference, error) {
	var ref model.Reference
	err := r.db.WithContext(ctx).First(&ref, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ref, nil
}

func (r *referenceRepository) List(ctx context.Context, opts ListOptions) ([]model.Reference, error) {
	order, err := orderClause(referenceOrderColumns, opts.OrderBy, opts.Desc)
	if err != nil {
		return nil, err
	}
	tx := r.db.WithContext(ctx).Model(&model.Reference{})
	if opts.Brand != "" {
		tx = tx.Where("brand = ?", opts.Brand)
	}
	if opts.Limit > 0 {
		tx = tx.Limit(opts.Limit)
	}
	var refs []model.Reference
	err = tx.Order(order).Find(&refs).Error
	return refs, err
}

func (r *referenceRepository) Save(ctx context.Context, ref *model.Reference) error {
	return r.db.WithContext(ctx).Save(ref).Error
}

func (r *referenceRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Reference{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *referenceRepository) FindFirstByBrandAndName(ctx context.Context, brand, name string) (*model.Reference, error) {
	return r.first(r.db.WithContext(ctx).Where("brand = ? AND reference_name = ?", brand, name))
}

func (r *referenceRepository) FindFirstByName(ctx context.Context, name string) (*model.Reference, error) {
	return r.first(r.db.WithContext(ctx).Where("reference_name = ?", name))
}

func (r *referenceRepository) first(tx *gorm.DB) (*model.Reference, error) {
	var ref model.Reference
	err := tx.Order("id ASC").First(&ref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ref, nil
}

func (r *referenceRepository) ListWithoutDescription(ctx context.Context) ([]model.Reference, error) {
	var refs []model.Reference
	err := r.db.WithContext(ctx).
		Where("reference_description IS NULL").
		Order("id ASC").
		Find(&refs).Error
	return refs, err
}

func (r *referenceRepository) UpdateDescription(ctx context.Context, id uint, description string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Reference{}).
		Where("id = ?", id).
		Update("reference_description", description)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

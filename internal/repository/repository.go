package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/watchledger/backend/internal/model"
)

// ErrNotFound 记录不存在错误
var ErrNotFound = errors.New("record not found")

// ErrInvalidOrder 排序字段不在白名单内
var ErrInvalidOrder = errors.New("invalid order column")

// ListOptions 列表查询的过滤与排序
type ListOptions struct {
	OrderBy string // 列名，需在白名单内，为空时按 id 升序
	Desc    bool
	Brand   string // 等值过滤，为空时不过滤
	Limit   int
}

type WatchRepository interface {
	Create(ctx context.Context, watch *model.Watch) error
	Get(ctx context.Context, id uint) (*model.Watch, error)
	List(ctx context.Context, opts ListOptions) ([]model.Watch, error)
	Save(ctx context.Context, watch *model.Watch) error
	Delete(ctx context.Context, id uint) error
	// ListWithModelReference 列出 model_reference 非空的手表，按 id 升序
	ListWithModelReference(ctx context.Context) ([]model.Watch, error)
}

type ReferenceRepository interface {
	Create(ctx context.Context, ref *model.Reference) error
	Get(ctx context.Context, id uint) (*model.Reference, error)
	List(ctx context.Context, opts ListOptions) ([]model.Reference, error)
	Save(ctx context.Context, ref *model.Reference) error
	Delete(ctx context.Context, id uint) error
	// FindFirstByBrandAndName 按 (brand, reference_name) 等值匹配，返回 id 最小的一条
	FindFirstByBrandAndName(ctx context.Context, brand, name string) (*model.Reference, error)
	// FindFirstByName 仅按 reference_name 匹配，返回 id 最小的一条
	FindFirstByName(ctx context.Context, name string) (*model.Reference, error)
	// ListWithoutDescription 列出 reference_description 为 NULL 的记录
	ListWithoutDescription(ctx context.Context) ([]model.Reference, error)
	// UpdateDescription 单条原子更新描述
	UpdateDescription(ctx context.Context, id uint, description string) error
}

// PromptFilter 提示词列表过滤条件
type PromptFilter struct {
	Purpose string
	AIModel string
	OrderBy string
	Desc    bool
}

type PromptRepository interface {
	Create(ctx context.Context, prompt *model.Prompt) error
	Get(ctx context.Context, id uint) (*model.Prompt, error)
	List(ctx context.Context, filter PromptFilter) ([]model.Prompt, error)
	Save(ctx context.Context, prompt *model.Prompt) error
	Delete(ctx context.Context, id uint) error
}

type StyleGuideRepository interface {
	Create(ctx context.Context, guide *model.StyleGuide) error
	Get(ctx context.Context, id uint) (*model.StyleGuide, error)
	GetByName(ctx context.Context, name string) (*model.StyleGuide, error)
	List(ctx context.Context) ([]model.StyleGuide, error)
	Save(ctx context.Context, guide *model.StyleGuide) error
	Delete(ctx context.Context, id uint) error
}

type GenerationLogRepository interface {
	Create(ctx context.Context, log *model.GenerationLog) error
	// ListRecent 按 id 倒序返回最近的记录
	ListRecent(ctx context.Context, limit int) ([]model.GenerationLog, error)
}

// orderClause 根据白名单生成排序子句
func orderClause(allowed map[string]bool, column string, desc bool) (string, error) {
	if column == "" {
		column = "id"
	}
	if !allowed[column] {
		return "", fmt.Errorf("%w: %s", ErrInvalidOrder, column)
	}
	if desc {
		return column + " DESC", nil
	}
	return column + " ASC", nil
}

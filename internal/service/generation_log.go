package service

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/watchledger/backend/internal/model"
	"github.com/watchledger/backend/internal/repository"
	"k8s.io/klog/v2"
)

// GenerationLogService 生成记录服务接口
type GenerationLogService interface {
	Record(ctx context.Context, entry *model.GenerationLog, usage *schema.TokenUsage) error
	ListRecent(ctx context.Context, limit int) ([]model.GenerationLog, error)
}

type generationLogService struct {
	repo repository.GenerationLogRepository
}

// NewGenerationLogService 创建生成记录服务
func NewGenerationLogService(repo repository.GenerationLogRepository) GenerationLogService {
	return &generationLogService{repo: repo}
}

// Record 写入一次生成尝试，usage 为空时 token 字段保持 0
func (s *generationLogService) Record(ctx context.Context, entry *model.GenerationLog, usage *schema.TokenUsage) error {
	if entry == nil {
		return fmt.Errorf("generation log entry is nil")
	}

	if usage != nil {
		entry.PromptTokens = usage.PromptTokens
		entry.CompletionTokens = usage.CompletionTokens
		entry.TotalTokens = usage.TotalTokens
		if entry.TotalTokens == 0 {
			entry.TotalTokens = usage.PromptTokens + usage.CompletionTokens
		}
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		klog.V(6).Infof("生成记录写入失败：purpose=%s, 模型=%s, err=%v", entry.Purpose, entry.Model, err)
		return err
	}
	klog.V(6).Infof("生成记录写入成功：id=%d, purpose=%s, 模型=%s, status=%s", entry.ID, entry.Purpose, entry.Model, entry.Status)
	return nil
}

// ListRecent 最近的生成记录
func (s *generationLogService) ListRecent(ctx context.Context, limit int) ([]model.GenerationLog, error) {
	return s.repo.ListRecent(ctx, limit)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/watchledger/backend/internal/domain"
	"github.com/watchledger/backend/internal/repository"
	"k8s.io/klog/v2"
)

// PromptSet 一次生成所需的提示词
type PromptSet struct {
	SystemPrompt string
	StyleGuide   string
}

// PromptStore 按用途和模型解析提示词，结果按 TTL 缓存
type PromptStore struct {
	prompts repository.PromptRepository
	guides  repository.StyleGuideRepository
	cache   *cache.Cache // ttl<=0 时为 nil，不缓存
}

// NewPromptStore 创建提示词解析器
func NewPromptStore(prompts repository.PromptRepository, guides repository.StyleGuideRepository, ttl time.Duration) *PromptStore {
	s := &PromptStore{prompts: prompts, guides: guides}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// Resolve 解析提示词
// watch: 需要同时存在非空的 "System Prompt" 与 "Style Guide"，否则返回 ErrMissingPrompt
// reference: 读取风格指南 reference_description_system_prompt，缺失时为空串
func (s *PromptStore) Resolve(ctx context.Context, purpose domain.Purpose, modelID string) (*PromptSet, error) {
	key := string(purpose) + "|" + modelID
	if purpose == domain.PurposeReference {
		key = string(purpose) + "|"
	}
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			set := cached.(PromptSet)
			return &set, nil
		}
	}

	var (
		set *PromptSet
		err error
	)
	switch purpose {
	case domain.PurposeWatch:
		set, err = s.resolveWatch(ctx, modelID)
	case domain.PurposeReference:
		set, err = s.resolveReference(ctx)
	default:
		return nil, domain.NewValidationError("unsupported purpose %q", purpose)
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetDefault(key, *set)
	}
	return set, nil
}

// Invalidate 清空缓存，提示词或风格指南变更后调用
func (s *PromptStore) Invalidate() {
	if s.cache == nil {
		return
	}
	s.cache.Flush()
	klog.V(6).Infof("提示词缓存已清空")
}

func (s *PromptStore) resolveWatch(ctx context.Context, modelID string) (*PromptSet, error) {
	prompts, err := s.prompts.List(ctx, repository.PromptFilter{
		Purpose: string(domain.PurposeWatch),
		AIModel: modelID,
	})
	if err != nil {
		return nil, domain.Persistence("list prompts", err)
	}

	set := &PromptSet{}
	foundSystem, foundStyle := false, false
	// 同名多条时取 id 最小的一条
	for _, p := range prompts {
		switch p.Name {
		case domain.PromptNameSystem:
			if !foundSystem {
				set.SystemPrompt = p.Content
				foundSystem = true
			}
		case domain.PromptNameStyleGuide:
			if !foundStyle {
				set.StyleGuide = p.Content
				foundStyle = true
			}
		}
	}

	if strings.TrimSpace(set.SystemPrompt) == "" {
		return nil, fmt.Errorf("%w: %q is missing or empty for purpose=watch model=%s", domain.ErrMissingPrompt, domain.PromptNameSystem, modelID)
	}
	if strings.TrimSpace(set.StyleGuide) == "" {
		return nil, fmt.Errorf("%w: %q is missing or empty for purpose=watch model=%s", domain.ErrMissingPrompt, domain.PromptNameStyleGuide, modelID)
	}
	return set, nil
}

func (s *PromptStore) resolveReference(ctx context.Context) (*PromptSet, error) {
	guide, err := s.guides.GetByName(ctx, domain.StyleGuideReferenceSystemPrompt)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			klog.Warningf("风格指南 %s 不存在，使用空提示词生成", domain.StyleGuideReferenceSystemPrompt)
			return &PromptSet{}, nil
		}
		return nil, domain.Persistence("get style guide", err)
	}
	if strings.TrimSpace(guide.Content) == "" {
		klog.Warningf("风格指南 %s 内容为空，使用空提示词生成", domain.StyleGuideReferenceSystemPrompt)
	}
	return &PromptSet{SystemPrompt: guide.Content}, nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/watchledger/backend/internal/domain"
	"github.com/watchledger/backend/internal/eventbus"
	"github.com/watchledger/backend/internal/model"
	"github.com/watchledger/backend/internal/repository"
	"k8s.io/klog/v2"
)

// PromptRequest 创建/更新提示词请求
type PromptRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Content string `json:"content"`
	Purpose string `json:"purpose" binding:"required"`
	AIModel string `json:"ai_model" binding:"required,max=100"`
}

// StyleGuideRequest 创建/更新风格指南请求
type StyleGuideRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Content string `json:"content"`
}

// PromptService 提示词与风格指南服务接口，写操作后发布 PromptChanged
type PromptService interface {
	List(ctx context.Context, filter repository.PromptFilter) ([]model.Prompt, error)
	Get(ctx context.Context, id uint) (*model.Prompt, error)
	Create(ctx context.Context, req PromptRequest) (*model.Prompt, error)
	Update(ctx context.Context, id uint, req PromptRequest) (*model.Prompt, error)
	Delete(ctx context.Context, id uint) error

	ListStyleGuides(ctx context.Context) ([]model.StyleGuide, error)
	GetStyleGuide(ctx context.Context, id uint) (*model.StyleGuide, error)
	CreateStyleGuide(ctx context.Context, req StyleGuideRequest) (*model.StyleGuide, error)
	UpdateStyleGuide(ctx context.Context, id uint, req StyleGuideRequest) (*model.StyleGuide, error)
	DeleteStyleGuide(ctx context.Context, id uint) error
}

type promptService struct {
	prompts repository.PromptRepository
	guides  repository.StyleGuideRepository
	bus     *eventbus.CatalogEventBus
}

// NewPromptService 创建提示词服务，bus 可为 nil
func NewPromptService(prompts repository.PromptRepository, guides repository.StyleGuideRepository, bus *eventbus.CatalogEventBus) PromptService {
	return &promptService{prompts: prompts, guides: guides, bus: bus}
}

func validatePrompt(req PromptRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return domain.NewValidationError("Prompt name is required")
	}
	if !domain.Purpose(req.Purpose).Valid() {
		return domain.NewValidationError("Invalid purpose %q", req.Purpose)
	}
	if strings.TrimSpace(req.AIModel) == "" {
		return domain.NewValidationError("AI model is required")
	}
	return nil
}

func (s *promptService) changed(ctx context.Context, name, purpose, aiModel string) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, eventbus.CatalogEventPromptChanged, eventbus.CatalogEvent{
		Type:    eventbus.CatalogEventPromptChanged,
		Name:    name,
		Purpose: purpose,
		AIModel: aiModel,
		Source:  "user",
	}); err != nil {
		klog.Warningf("发布提示词变更事件失败: name=%s, err=%v", name, err)
	}
}

func (s *promptService) List(ctx context.Context, filter repository.PromptFilter) ([]model.Prompt, error) {
	prompts, err := s.prompts.List(ctx, filter)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidOrder) {
			return nil, domain.NewValidationError("%v", err)
		}
		return nil, domain.Persistence("list prompts", err)
	}
	return prompts, nil
}

func (s *promptService) Get(ctx context.Context, id uint) (*model.Prompt, error) {
	return s.prompts.Get(ctx, id)
}

func (s *promptService) Create(ctx context.Context, req PromptRequest) (*model.Prompt, error) {
	if err := validatePrompt(req); err != nil {
		return nil, err
	}
	p := &model.Prompt{
		Name:    strings.TrimSpace(req.Name),
		Content: req.Content,
		Purpose: req.Purpose,
		AIModel: strings.TrimSpace(req.AIModel),
	}
	if err := s.prompts.Create(ctx, p); err != nil {
		return nil, domain.Persistence("create prompt", err)
	}
	klog.V(6).Infof("提示词已创建: id=%d, name=%s, purpose=%s, model=%s", p.ID, p.Name, p.Purpose, p.AIModel)
	s.changed(ctx, p.Name, p.Purpose, p.AIModel)
	return p, nil
}

func (s *promptService) Update(ctx context.Context, id uint, req PromptRequest) (*model.Prompt, error) {
	if err := validatePrompt(req); err != nil {
		return nil, err
	}
	p, err := s.prompts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(req.Name)
	p.Content = req.Content
	p.Purpose = req.Purpose
	p.AIModel = strings.TrimSpace(req.AIModel)
	if err := s.prompts.Save(ctx, p); err != nil {
		return nil, domain.Persistence("save prompt", err)
	}
	klog.V(6).Infof("提示词已更新: id=%d", p.ID)
	s.changed(ctx, p.Name, p.Purpose, p.AIModel)
	return p, nil
}

func (s *promptService) Delete(ctx context.Context, id uint) error {
	p, err := s.prompts.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.prompts.Delete(ctx, id); err != nil {
		return err
	}
	klog.V(6).Infof("提示词已删除: id=%d", id)
	s.changed(ctx, p.Name, p.Purpose, p.AIModel)
	return nil
}

func (s *promptService) ListStyleGuides(ctx context.Context) ([]model.StyleGuide, error) {
	guides, err := s.guides.List(ctx)
	if err != nil {
		return nil, domain.Persistence("list style guides", err)
	}
	return guides, nil
}

func (s *promptService) GetStyleGuide(ctx context.Context, id uint) (*model.StyleGuide, error) {
	return s.guides.Get(ctx, id)
}

func (s *promptService) CreateStyleGuide(ctx context.Context, req StyleGuideRequest) (*model.StyleGuide, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.NewValidationError("Style guide name is required")
	}
	if _, err := s.guides.GetByName(ctx, name); err == nil {
		return nil, domain.NewValidationError("Style guide %q already exists", name)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, domain.Persistence("get style guide", err)
	}

	g := &model.StyleGuide{Name: name, Content: req.Content}
	if err := s.guides.Create(ctx, g); err != nil {
		return nil, domain.Persistence("create style guide", err)
	}
	klog.V(6).Infof("风格指南已创建: id=%d, name=%s", g.ID, g.Name)
	s.changed(ctx, g.Name, "", "")
	return g, nil
}

func (s *promptService) UpdateStyleGuide(ctx context.Context, id uint, req StyleGuideRequest) (*model.StyleGuide, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.NewValidationError("Style guide name is required")
	}
	g, err := s.guides.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if other, err := s.guides.GetByName(ctx, name); err == nil && other.ID != id {
		return nil, domain.NewValidationError("Style guide %q already exists", name)
	}
	g.Name = name
	g.Content = req.Content
	if err := s.guides.Save(ctx, g); err != nil {
		return nil, domain.Persistence("save style guide", err)
	}
	klog.V(6).Infof("风格指南已更新: id=%d", g.ID)
	s.changed(ctx, g.Name, "", "")
	return g, nil
}

func (s *promptService) DeleteStyleGuide(ctx context.Context, id uint) error {
	g, err := s.guides.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guides.Delete(ctx, id); err != nil {
		return err
	}
	klog.V(6).Infof("风格指南已删除: id=%d", id)
	s.changed(ctx, g.Name, "", "")
	return nil
}

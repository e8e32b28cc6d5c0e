package subscriber

import (
	"context"

	"github.com/watchledger/backend/internal/eventbus"
	"k8s.io/klog/v2"
)

// PromptCache 提示词缓存，由 service.PromptStore 实现
type PromptCache interface {
	Invalidate()
}

type CatalogEventSubscriber struct {
	prompts PromptCache
}

func NewCatalogEventSubscriber(prompts PromptCache) *CatalogEventSubscriber {
	return &CatalogEventSubscriber{prompts: prompts}
}

func (s *CatalogEventSubscriber) Register(bus *eventbus.CatalogEventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.CatalogEventPromptChanged, s.handlePromptChanged)
	bus.Subscribe(eventbus.CatalogEventReferenceCreated, s.handleReferenceCreated)
	bus.Subscribe(eventbus.CatalogEventReferenceDescribed, s.handleReferenceDescribed)
}

// handlePromptChanged 提示词或风格指南变更后清空缓存
func (s *CatalogEventSubscriber) handlePromptChanged(ctx context.Context, event eventbus.CatalogEvent) error {
	if s.prompts != nil {
		s.prompts.Invalidate()
	}
	klog.V(6).Infof("提示词变更事件处理成功: name=%s, purpose=%s, model=%s", event.Name, event.Purpose, event.AIModel)
	return nil
}

func (s *CatalogEventSubscriber) handleReferenceCreated(ctx context.Context, event eventbus.CatalogEvent) error {
	klog.V(6).Infof("型号新建事件处理成功: id=%d, brand=%s, reference=%s, source=%s", event.ReferenceID, event.Brand, event.Name, event.Source)
	return nil
}

func (s *CatalogEventSubscriber) handleReferenceDescribed(ctx context.Context, event eventbus.CatalogEvent) error {
	klog.V(6).Infof("型号描述事件处理成功: id=%d, brand=%s, reference=%s, model=%s", event.ReferenceID, event.Brand, event.Name, event.AIModel)
	return nil
}

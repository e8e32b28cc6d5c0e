package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/watchledger/backend/internal/domain"
	"github.com/watchledger/backend/internal/eventbus"
	"github.com/watchledger/backend/internal/metrics"
	"github.com/watchledger/backend/internal/model"
	"github.com/watchledger/backend/internal/pkg/llm"
	"github.com/watchledger/backend/internal/repository"
	"github.com/watchledger/backend/internal/utils"
	"k8s.io/klog/v2"
)

// Completer 调用上游 LLM，由 llm.Client 实现
type Completer interface {
	Complete(ctx context.Context, adapter *llm.Adapter, messages []*schema.Message) (*schema.Message, error)
}

// WatchGenerationRequest 手表描述预览请求
type WatchGenerationRequest struct {
	Watch       model.WatchAttributes
	ActiveModel string
}

// ReferenceGenerationRequest 型号描述请求
// ReferenceID 非空时生成并保存；否则按 Brand/ReferenceName 只返回预览文本
type ReferenceGenerationRequest struct {
	ReferenceID   *uint
	Brand         string
	ReferenceName string
	ActiveModel   string
}

// BatchItemError generate-all 中单项失败
type BatchItemError struct {
	ReferenceID uint   `json:"reference_id"`
	Error       string `json:"error"`
}

// BatchResult generate-all 结果
type BatchResult struct {
	BatchID   string           `json:"batch_id"`
	Total     int              `json:"total"`
	Processed int              `json:"processed"`
	Failed    int              `json:"failed"`
	Errors    []BatchItemError `json:"errors,omitempty"`
}

// GenerationService 解析提示词、选择模型、调用上游并按用途决定是否保存
type GenerationService struct {
	defaultModel string
	store        *PromptStore
	registry     *llm.Registry
	client       Completer
	gate         *DependencyGate
	refs         repository.ReferenceRepository
	logs         GenerationLogService
	bus          *eventbus.CatalogEventBus
	metrics      *metrics.Metrics
}

// NewGenerationService 创建生成服务，logs 可为 nil
func NewGenerationService(
	defaultModel string,
	store *PromptStore,
	registry *llm.Registry,
	client Completer,
	gate *DependencyGate,
	refs repository.ReferenceRepository,
	logs GenerationLogService,
) *GenerationService {
	if defaultModel == "" {
		defaultModel = domain.DefaultModel
	}
	return &GenerationService{
		defaultModel: defaultModel,
		store:        store,
		registry:     registry,
		client:       client,
		gate:         gate,
		refs:         refs,
		logs:         logs,
	}
}

// SetEventBus 设置事件总线
func (s *GenerationService) SetEventBus(bus *eventbus.CatalogEventBus) {
	s.bus = bus
}

// SetMetrics 设置指标
func (s *GenerationService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// DefaultModel 未指定 activeModel 时使用的模型
func (s *GenerationService) DefaultModel() string {
	return s.defaultModel
}

// Models 支持的模型列表
func (s *GenerationService) Models() []string {
	return s.registry.Models()
}

func (s *GenerationService) modelOrDefault(activeModel string) string {
	if m := strings.TrimSpace(activeModel); m != "" {
		return m
	}
	return s.defaultModel
}

// GeneratePreview 生成手表描述，只返回文本，不写库
// 先执行门禁检查，未通过时不会调用上游
func (s *GenerationService) GeneratePreview(ctx context.Context, req WatchGenerationRequest) (string, error) {
	modelID := s.modelOrDefault(req.ActiveModel)

	ref, err := s.gate.Check(ctx, req.Watch.Brand, req.Watch.ModelReference)
	if err != nil {
		return "", err
	}

	attrs := req.Watch
	attrs.Brand = strings.TrimSpace(attrs.Brand)
	attrs.ModelReference = strings.TrimSpace(attrs.ModelReference)
	return s.generate(ctx, domain.PurposeWatch, modelID, generationSubject{
		Brand:                attrs.Brand,
		Reference:            attrs.ModelReference,
		Watch:                &attrs,
		ReferenceDescription: ref.Description(),
	})
}

// GenerateReference 型号描述入口：有 id 时生成并保存，否则只返回预览
func (s *GenerationService) GenerateReference(ctx context.Context, req ReferenceGenerationRequest) (string, error) {
	if req.ReferenceID != nil {
		return s.GenerateAndStore(ctx, *req.ReferenceID, req.ActiveModel)
	}

	brand := strings.TrimSpace(req.Brand)
	name := strings.TrimSpace(req.ReferenceName)
	if brand == "" || name == "" {
		return "", domain.NewValidationError("Brand and reference name are required")
	}
	return s.generate(ctx, domain.PurposeReference, s.modelOrDefault(req.ActiveModel), generationSubject{
		Brand:     brand,
		Reference: name,
	})
}

// GenerateAndStore 为已有 Reference 生成描述并立即保存
func (s *GenerationService) GenerateAndStore(ctx context.Context, referenceID uint, activeModel string) (string, error) {
	ref, err := s.refs.Get(ctx, referenceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.NewValidationError("Reference %d not found", referenceID)
		}
		return "", domain.Persistence("get reference", err)
	}
	return s.generateAndStore(ctx, ref, s.modelOrDefault(activeModel), "")
}

// GenerateAll 为所有描述为空的 Reference 依次生成并保存
// 单项失败只记录并跳过；ctx 取消时在两项之间停止，已保存的记录不受影响
func (s *GenerationService) GenerateAll(ctx context.Context, activeModel string) (*BatchResult, error) {
	modelID := s.modelOrDefault(activeModel)
	result := &BatchResult{BatchID: uuid.New().String()}

	refs, err := s.refs.ListWithoutDescription(ctx)
	if err != nil {
		return nil, domain.Persistence("list references without description", err)
	}
	result.Total = len(refs)
	klog.V(6).Infof("批量生成开始: batch=%s, model=%s, total=%d", result.BatchID, modelID, result.Total)

	for i := range refs {
		if err := ctx.Err(); err != nil {
			klog.Warningf("批量生成中止: batch=%s, processed=%d, failed=%d, err=%v", result.BatchID, result.Processed, result.Failed, err)
			return result, err
		}

		ref := &refs[i]
		if _, err := s.generateAndStore(ctx, ref, modelID, result.BatchID); err != nil {
			klog.Errorf("批量生成单项失败: batch=%s, referenceID=%d, err=%v", result.BatchID, ref.ID, err)
			result.Failed++
			result.Errors = append(result.Errors, BatchItemError{ReferenceID: ref.ID, Error: err.Error()})
			s.metrics.ObserveBatchItem("failed")
			continue
		}
		result.Processed++
		s.metrics.ObserveBatchItem("success")
	}

	klog.V(6).Infof("批量生成完成: batch=%s, processed=%d, failed=%d", result.BatchID, result.Processed, result.Failed)
	return result, nil
}

func (s *GenerationService) generateAndStore(ctx context.Context, ref *model.Reference, modelID, batchID string) (string, error) {
	id := ref.ID
	text, err := s.generate(ctx, domain.PurposeReference, modelID, generationSubject{
		Brand:       ref.Brand,
		Reference:   ref.ReferenceName,
		ReferenceID: &id,
		BatchID:     batchID,
	})
	if err != nil {
		return "", err
	}

	// 上游已返回结果，请求取消也要保存
	if err := s.refs.UpdateDescription(context.WithoutCancel(ctx), ref.ID, text); err != nil {
		return "", domain.Persistence("update reference description", err)
	}
	klog.V(6).Infof("型号描述已保存: referenceID=%d, length=%d", ref.ID, len(text))

	if s.bus != nil {
		if err := s.bus.Publish(ctx, eventbus.CatalogEventReferenceDescribed, eventbus.CatalogEvent{
			Type:        eventbus.CatalogEventReferenceDescribed,
			ReferenceID: ref.ID,
			Brand:       ref.Brand,
			Name:        ref.ReferenceName,
			AIModel:     modelID,
			Source:      "generation",
		}); err != nil {
			klog.Warningf("发布型号描述事件失败: referenceID=%d, err=%v", ref.ID, err)
		}
	}
	return text, nil
}

type generationSubject struct {
	Brand                string
	Reference            string
	ReferenceID          *uint
	BatchID              string
	Watch                *model.WatchAttributes
	ReferenceDescription string
}

func (s *GenerationService) generate(ctx context.Context, purpose domain.Purpose, modelID string, subject generationSubject) (string, error) {
	start := time.Now()
	text, usage, err := s.run(ctx, purpose, modelID, subject)
	elapsed := time.Since(start)

	outcome := model.GenerationStatusSuccess
	if err != nil {
		outcome = model.GenerationStatusFailed
		klog.Errorf("生成描述失败: purpose=%s, model=%s, brand=%s, reference=%s, err=%v", purpose, modelID, subject.Brand, subject.Reference, err)
	}
	s.metrics.ObserveGeneration(string(purpose), modelID, outcome, elapsed)
	s.record(ctx, purpose, modelID, subject, usage, err, elapsed)
	return text, err
}

func (s *GenerationService) run(ctx context.Context, purpose domain.Purpose, modelID string, subject generationSubject) (string, *schema.TokenUsage, error) {
	prompts, err := s.store.Resolve(ctx, purpose, modelID)
	if err != nil {
		return "", nil, err
	}

	adapter, err := s.registry.Lookup(modelID)
	if err != nil {
		return "", nil, err
	}

	var messages []*schema.Message
	switch purpose {
	case domain.PurposeReference:
		messages = buildReferenceMessages(prompts, subject.Brand, subject.Reference)
	case domain.PurposeWatch:
		messages = buildWatchMessages(prompts, *subject.Watch, subject.ReferenceDescription)
	}
	klog.V(8).Infof("生成请求消息: %s", utils.ToJSON(messages))

	msg, err := s.client.Complete(ctx, adapter, messages)
	if err != nil {
		return "", nil, err
	}

	var usage *schema.TokenUsage
	if msg.ResponseMeta != nil {
		usage = msg.ResponseMeta.Usage
	}
	text := utils.NormalizeGenerated(msg.Content)
	if text == "" {
		return "", usage, &domain.UpstreamError{Body: "empty completion"}
	}
	return text, usage, nil
}

// record 写入生成记录，失败只打印日志
func (s *GenerationService) record(ctx context.Context, purpose domain.Purpose, modelID string, subject generationSubject, usage *schema.TokenUsage, genErr error, elapsed time.Duration) {
	if usage != nil {
		s.metrics.AddTokens(modelID, usage.PromptTokens, usage.CompletionTokens)
	}
	if s.logs == nil {
		return
	}

	entry := &model.GenerationLog{
		BatchID:     subject.BatchID,
		Purpose:     string(purpose),
		Model:       modelID,
		Brand:       subject.Brand,
		Reference:   subject.Reference,
		ReferenceID: subject.ReferenceID,
		Status:      model.GenerationStatusSuccess,
		DurationMs:  elapsed.Milliseconds(),
	}
	if genErr != nil {
		entry.Status = model.GenerationStatusFailed
		entry.ErrorMsg = truncate(genErr.Error(), 2000)
	}

	// 请求被取消时仍需写入记录
	if err := s.logs.Record(context.WithoutCancel(ctx), entry, usage); err != nil {
		klog.Warningf("生成记录写入失败: purpose=%s, model=%s, err=%v", purpose, modelID, err)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

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

// WatchRequest 创建/更新手表请求
type WatchRequest struct {
	Brand                 string  `json:"brand" binding:"required,max=255"`
	ModelName             string  `json:"model_name" binding:"max=255"`
	ModelReference        *string `json:"model_reference" binding:"omitempty,max=255"`
	CaseMaterial          string  `json:"case_material" binding:"max=255"`
	Year                  *int    `json:"year"`
	Movement              string  `json:"movement" binding:"max=100"`
	ListingReference      string  `json:"listing_reference" binding:"max=255"`
	Condition             string  `json:"condition" binding:"max=100"`
	Description           string  `json:"description"`
	AdditionalInformation string  `json:"additional_information"`
}

func (r *WatchRequest) apply(w *model.Watch) {
	w.Brand = strings.TrimSpace(r.Brand)
	w.ModelName = r.ModelName
	w.ModelReference = nil
	if r.ModelReference != nil {
		if ref := strings.TrimSpace(*r.ModelReference); ref != "" {
			w.ModelReference = &ref
		}
	}
	w.CaseMaterial = r.CaseMaterial
	w.Year = r.Year
	w.Movement = r.Movement
	w.ListingReference = r.ListingReference
	w.Condition = r.Condition
	w.Description = r.Description
	w.AdditionalInformation = r.AdditionalInformation
}

// WatchService 手表服务接口
type WatchService interface {
	List(ctx context.Context, opts repository.ListOptions) ([]model.Watch, error)
	Get(ctx context.Context, id uint) (*model.Watch, error)
	Create(ctx context.Context, req WatchRequest) (*model.Watch, error)
	Update(ctx context.Context, id uint, req WatchRequest) (*model.Watch, error)
	Delete(ctx context.Context, id uint) error
}

type watchService struct {
	repo repository.WatchRepository
}

// NewWatchService 创建手表服务
func NewWatchService(repo repository.WatchRepository) WatchService {
	return &watchService{repo: repo}
}

func (s *watchService) List(ctx context.Context, opts repository.ListOptions) ([]model.Watch, error) {
	watches, err := s.repo.List(ctx, opts)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidOrder) {
			return nil, domain.NewValidationError("%v", err)
		}
		return nil, domain.Persistence("list watches", err)
	}
	return watches, nil
}

func (s *watchService) Get(ctx context.Context, id uint) (*model.Watch, error) {
	return s.repo.Get(ctx, id)
}

func (s *watchService) Create(ctx context.Context, req WatchRequest) (*model.Watch, error) {
	if strings.TrimSpace(req.Brand) == "" {
		return nil, domain.NewValidationError("Brand is required")
	}
	w := &model.Watch{}
	req.apply(w)
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, domain.Persistence("create watch", err)
	}
	klog.V(6).Infof("手表已创建: id=%d, brand=%s, reference=%s", w.ID, w.Brand, w.Reference())
	return w, nil
}

// Update 整体替换可编辑字段，description 的修改也走这里
func (s *watchService) Update(ctx context.Context, id uint, req WatchRequest) (*model.Watch, error) {
	if strings.TrimSpace(req.Brand) == "" {
		return nil, domain.NewValidationError("Brand is required")
	}
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.apply(w)
	if err := s.repo.Save(ctx, w); err != nil {
		return nil, domain.Persistence("save watch", err)
	}
	klog.V(6).Infof("手表已更新: id=%d", w.ID)
	return w, nil
}

func (s *watchService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	klog.V(6).Infof("手表已删除: id=%d", id)
	return nil
}

// ReferenceRequest 创建/更新型号请求
type ReferenceRequest struct {
	Brand                string  `json:"brand" binding:"required,max=255"`
	ReferenceName        string  `json:"reference_name" binding:"required,max=255"`
	ReferenceDescription *string `json:"reference_description"`
}

// ReferenceService 型号服务接口
type ReferenceService interface {
	List(ctx context.Context, opts repository.ListOptions) ([]model.Reference, error)
	Get(ctx context.Context, id uint) (*model.Reference, error)
	Create(ctx context.Context, req ReferenceRequest) (*model.Reference, error)
	Update(ctx context.Context, id uint, req ReferenceRequest) (*model.Reference, error)
	Delete(ctx context.Context, id uint) error
}

type referenceService struct {
	repo repository.ReferenceRepository
	bus  *eventbus.CatalogEventBus
}

// NewReferenceService 创建型号服务，bus 可为 nil
func NewReferenceService(repo repository.ReferenceRepository, bus *eventbus.CatalogEventBus) ReferenceService {
	return &referenceService{repo: repo, bus: bus}
}

func validateReference(req ReferenceRequest) error {
	if strings.TrimSpace(req.Brand) == "" || strings.TrimSpace(req.ReferenceName) == "" {
		return domain.NewValidationError("Brand and reference name are required")
	}
	return nil
}

// normalizeDescription 空白描述按未设置处理
func normalizeDescription(desc *string) *string {
	if desc == nil || strings.TrimSpace(*desc) == "" {
		return nil
	}
	return desc
}

func (s *referenceService) List(ctx context.Context, opts repository.ListOptions) ([]model.Reference, error) {
	refs, err := s.repo.List(ctx, opts)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidOrder) {
			return nil, domain.NewValidationError("%v", err)
		}
		return nil, domain.Persistence("list references", err)
	}
	return refs, nil
}

func (s *referenceService) Get(ctx context.Context, id uint) (*model.Reference, error) {
	return s.repo.Get(ctx, id)
}

func (s *referenceService) Create(ctx context.Context, req ReferenceRequest) (*model.Reference, error) {
	if err := validateReference(req); err != nil {
		return nil, err
	}
	ref := &model.Reference{
		Brand:                strings.TrimSpace(req.Brand),
		ReferenceName:        strings.TrimSpace(req.ReferenceName),
		ReferenceDescription: normalizeDescription(req.ReferenceDescription),
	}
	if err := s.repo.Create(ctx, ref); err != nil {
		return nil, domain.Persistence("create reference", err)
	}
	klog.V(6).Infof("型号已创建: id=%d, brand=%s, reference=%s", ref.ID, ref.Brand, ref.ReferenceName)

	if s.bus != nil {
		if err := s.bus.Publish(ctx, eventbus.CatalogEventReferenceCreated, eventbus.CatalogEvent{
			Type:        eventbus.CatalogEventReferenceCreated,
			ReferenceID: ref.ID,
			Brand:       ref.Brand,
			Name:        ref.ReferenceName,
			Source:      "user",
		}); err != nil {
			klog.Warningf("发布型号新建事件失败: id=%d, err=%v", ref.ID, err)
		}
	}
	return ref, nil
}

func (s *referenceService) Update(ctx context.Context, id uint, req ReferenceRequest) (*model.Reference, error) {
	if err := validateReference(req); err != nil {
		return nil, err
	}
	ref, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ref.Brand = strings.TrimSpace(req.Brand)
	ref.ReferenceName = strings.TrimSpace(req.ReferenceName)
	ref.ReferenceDescription = normalizeDescription(req.ReferenceDescription)
	if err := s.repo.Save(ctx, ref); err != nil {
		return nil, domain.Persistence("save reference", err)
	}
	klog.V(6).Infof("型号已更新: id=%d", ref.ID)
	return ref, nil
}

func (s *referenceService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	klog.V(6).Infof("型号已删除: id=%d", id)
	return nil
}

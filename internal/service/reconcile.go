package service

import (
	"context"
	"errors"
	"strings"

	"github.com/watchledger/backend/internal/domain"
	"github.com/watchledger/backend/internal/eventbus"
	"github.com/watchledger/backend/internal/metrics"
	"github.com/watchledger/backend/internal/model"
	"github.com/watchledger/backend/internal/repository"
	"k8s.io/klog/v2"
)

// ReconcileResult 对账结果，Created 即新建的 Reference 数量
type ReconcileResult struct {
	Scanned int `json:"scanned"`
	Created int `json:"count"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// ReconcileService 扫描手表，为缺失的型号补建空描述的 Reference
type ReconcileService struct {
	watches    repository.WatchRepository
	refs       repository.ReferenceRepository
	matchBrand bool
	bus        *eventbus.CatalogEventBus
	metrics    *metrics.Metrics
}

// NewReconcileService 创建对账服务
// matchBrand 为 false 时只按 reference_name 判断是否存在
func NewReconcileService(watches repository.WatchRepository, refs repository.ReferenceRepository, matchBrand bool) *ReconcileService {
	return &ReconcileService{watches: watches, refs: refs, matchBrand: matchBrand}
}

// SetEventBus 设置事件总线
func (s *ReconcileService) SetEventBus(bus *eventbus.CatalogEventBus) {
	s.bus = bus
}

// SetMetrics 设置指标
func (s *ReconcileService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Reconcile 执行一次对账，可重复执行
// 单条检查或插入失败只记录并跳过，只有读取手表列表失败才返回错误
func (s *ReconcileService) Reconcile(ctx context.Context) (*ReconcileResult, error) {
	watches, err := s.watches.ListWithModelReference(ctx)
	if err != nil {
		return nil, domain.Persistence("list watches with model reference", err)
	}

	result := &ReconcileResult{}
	for i := range watches {
		if err := ctx.Err(); err != nil {
			klog.Warningf("对账中止: scanned=%d, created=%d, err=%v", result.Scanned, result.Created, err)
			s.metrics.ObserveReconcile(result.Created, result.Failed)
			return result, err
		}
		result.Scanned++

		w := &watches[i]
		name := w.Reference()
		if name == "" {
			result.Skipped++
			continue
		}
		brand := strings.TrimSpace(w.Brand)

		exists, err := s.exists(ctx, brand, name)
		if err != nil {
			klog.Errorf("对账检查失败: watchID=%d, reference=%s, err=%v", w.ID, name, err)
			result.Failed++
			continue
		}
		if exists {
			result.Skipped++
			continue
		}

		ref := &model.Reference{Brand: brand, ReferenceName: name}
		if err := s.refs.Create(ctx, ref); err != nil {
			klog.Errorf("对账新建型号失败: watchID=%d, brand=%s, reference=%s, err=%v", w.ID, brand, name, err)
			result.Failed++
			continue
		}
		result.Created++
		klog.V(6).Infof("对账新建型号: id=%d, brand=%s, reference=%s", ref.ID, brand, name)

		if s.bus != nil {
			if err := s.bus.Publish(ctx, eventbus.CatalogEventReferenceCreated, eventbus.CatalogEvent{
				Type:        eventbus.CatalogEventReferenceCreated,
				ReferenceID: ref.ID,
				Brand:       ref.Brand,
				Name:        ref.ReferenceName,
				Source:      "reconcile",
			}); err != nil {
				klog.Warningf("发布型号新建事件失败: id=%d, err=%v", ref.ID, err)
			}
		}
	}

	s.metrics.ObserveReconcile(result.Created, result.Failed)
	klog.V(6).Infof("对账完成: scanned=%d, created=%d, skipped=%d, failed=%d", result.Scanned, result.Created, result.Skipped, result.Failed)
	return result, nil
}

func (s *ReconcileService) exists(ctx context.Context, brand, name string) (bool, error) {
	var err error
	if s.matchBrand {
		_, err = s.refs.FindFirstByBrandAndName(ctx, brand, name)
	} else {
		_, err = s.refs.FindFirstByName(ctx, name)
	}
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return false, err
}

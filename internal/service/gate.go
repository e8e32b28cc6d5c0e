package service

import (
	"context"
	"errors"
	"strings"

	"github.com/watchledger/backend/internal/domain"
	"github.com/watchledger/backend/internal/model"
	"github.com/watchledger/backend/internal/repository"
	"k8s.io/klog/v2"
)

// DependencyGate 生成手表描述前，要求存在带描述的 Reference
type DependencyGate struct {
	refs repository.ReferenceRepository
}

// NewDependencyGate 创建门禁
func NewDependencyGate(refs repository.ReferenceRepository) *DependencyGate {
	return &DependencyGate{refs: refs}
}

// Check 按 (brand, reference_name) 查找第一条 Reference
// 返回 nil error 时 Reference 一定有非空描述
func (g *DependencyGate) Check(ctx context.Context, brand, modelReference string) (*model.Reference, error) {
	brand = strings.TrimSpace(brand)
	modelReference = strings.TrimSpace(modelReference)
	if brand == "" || modelReference == "" {
		return nil, &domain.ValidationError{Message: domain.ReasonBrandAndReference}
	}

	ref, err := g.refs.FindFirstByBrandAndName(ctx, brand, modelReference)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			klog.V(6).Infof("门禁未通过: brand=%s, reference=%s, reason=%s", brand, modelReference, domain.ReasonNoReferenceRecord)
			return nil, &domain.DependencyError{Reason: domain.ReasonNoReferenceRecord}
		}
		return nil, domain.Persistence("find reference", err)
	}

	if !ref.HasDescription() {
		klog.V(6).Infof("门禁未通过: brand=%s, reference=%s, reason=%s", brand, modelReference, domain.ReasonNoReferenceDescription)
		return nil, &domain.DependencyError{Reason: domain.ReasonNoReferenceDescription}
	}
	return ref, nil
}

package domain

import (
	"errors"
	"fmt"
)

// 错误分类，边界层通过 errors.Is 翻译为用户可见的消息
var (
	// ErrValidation 缺少必要的用户输入
	ErrValidation = errors.New("validation failed")

	// ErrDependencyNotMet 生成前置条件不满足
	ErrDependencyNotMet = errors.New("dependency not met")

	// ErrMissingPrompt 提示词或风格指南缺失
	ErrMissingPrompt = errors.New("missing prompt")

	// ErrConfiguration 不支持的模型或缺少密钥
	ErrConfiguration = errors.New("configuration error")

	// ErrUpstream LLM 服务返回非成功状态或响应格式错误
	ErrUpstream = errors.New("upstream error")

	// ErrPersistence 存储读写失败
	ErrPersistence = errors.New("persistence error")
)

// 门禁原因，原样返回给用户
const (
	ReasonNoReferenceRecord      = "No reference record for this watch"
	ReasonNoReferenceDescription = "No reference description yet created"
	ReasonBrandAndReference      = "Brand and model reference are required"
)

// ValidationError 携带面向用户的校验信息
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError 创建校验错误
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// DependencyError 门禁未通过的原因
type DependencyError struct {
	Reason string
}

func (e *DependencyError) Error() string { return e.Reason }

func (e *DependencyError) Unwrap() error { return ErrDependencyNotMet }

// UpstreamError LLM 服务错误详情
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream error: %s", e.Body)
	}
	return fmt.Sprintf("upstream error: status=%d body=%s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// Persistence 包装存储错误
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

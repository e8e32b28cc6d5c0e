package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/watchledger/backend/internal/domain"
	"k8s.io/klog/v2"
)

// maxResponseBytes 上游响应体读取上限
const maxResponseBytes = 4 << 20

// Client 通过 Adapter 调用上游 LLM，不做重试
type Client struct {
	HTTP    *http.Client
	Timeout time.Duration // 单次调用超时，0 表示只依赖 ctx
}

// NewClient 创建新的 LLM 客户端
func NewClient(timeout time.Duration) *Client {
	return &Client{
		HTTP:    &http.Client{},
		Timeout: timeout,
	}
}

// Complete 发送一次请求并提取生成结果
func (c *Client) Complete(ctx context.Context, adapter *Adapter, messages []*schema.Message) (*schema.Message, error) {
	if adapter.APIKey == "" {
		return nil, fmt.Errorf("%w: no API key configured for model %s", domain.ErrConfiguration, adapter.ModelID)
	}

	body, err := adapter.BuildRequest(messages)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, adapter.Endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrConfiguration, err)
	}
	req.Header = adapter.Headers(adapter.APIKey)

	klog.V(6).Infof("发送 LLM 请求: model=%s, format=%s, messages=%d", adapter.ModelID, adapter.PromptFormat, len(messages))
	klog.V(8).Infof("LLM 请求体: %s", string(data))

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", domain.ErrUpstream, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		klog.Errorf("LLM 返回错误: model=%s, status=%d, body=%s", adapter.ModelID, resp.StatusCode, string(raw))
		return nil, &domain.UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	msg, err := adapter.Extract(raw)
	if err != nil {
		klog.Errorf("LLM 响应解析失败: model=%s, err=%v", adapter.ModelID, err)
		return nil, err
	}
	klog.V(6).Infof("LLM 响应完成: model=%s, contentLength=%d, elapsed=%s", adapter.ModelID, len(msg.Content), time.Since(start))
	return msg, nil
}

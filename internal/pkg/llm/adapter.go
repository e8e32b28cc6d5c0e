package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/watchledger/backend/config"
	"github.com/watchledger/backend/internal/domain"
)

// PromptFormat 请求中提示词的组织方式
type PromptFormat string

const (
	// FormatSingle 所有内容拼接为一条 user 消息
	FormatSingle PromptFormat = "single"
	// FormatChat system 与 user 分开发送，必须包含 user 消息
	FormatChat PromptFormat = "chat"
)

// Adapter 单个模型的固定配置，构造后不再修改
type Adapter struct {
	ModelID      string
	Endpoint     string
	MaxTokens    int
	PromptFormat PromptFormat
	APIKey       string `json:"-"`

	headers func(apiKey string) http.Header
	extract func(raw []byte) (*schema.Message, error)
}

// Headers 构造鉴权请求头
func (a *Adapter) Headers(apiKey string) http.Header {
	return a.headers(apiKey)
}

// Extract 从原始响应中提取生成的消息和用量
func (a *Adapter) Extract(raw []byte) (*schema.Message, error) {
	return a.extract(raw)
}

// BuildRequest 按模型的提示词格式构造请求体
func (a *Adapter) BuildRequest(messages []*schema.Message) (any, error) {
	switch a.PromptFormat {
	case FormatSingle:
		parts := make([]string, 0, len(messages))
		for _, msg := range messages {
			if msg == nil || strings.TrimSpace(msg.Content) == "" {
				continue
			}
			parts = append(parts, msg.Content)
		}
		return &AnthropicRequest{
			Model:     a.ModelID,
			MaxTokens: a.MaxTokens,
			Messages:  []WireMessage{{Role: string(schema.User), Content: strings.Join(parts, "\n\n")}},
		}, nil
	case FormatChat:
		var system []string
		var wire []WireMessage
		hasUser := false
		for _, msg := range messages {
			if msg == nil {
				continue
			}
			if msg.Role == schema.System {
				if strings.TrimSpace(msg.Content) != "" {
					system = append(system, msg.Content)
				}
				continue
			}
			if msg.Role == schema.User && strings.TrimSpace(msg.Content) != "" {
				hasUser = true
			}
			wire = append(wire, WireMessage{Role: string(msg.Role), Content: msg.Content})
		}
		if !hasUser {
			return nil, fmt.Errorf("%w: model %s requires a user prompt", domain.ErrConfiguration, a.ModelID)
		}
		if len(system) > 0 {
			wire = append([]WireMessage{{Role: string(schema.System), Content: strings.Join(system, "\n\n")}}, wire...)
		}
		return &ChatRequest{
			Model:     a.ModelID,
			Messages:  wire,
			MaxTokens: a.MaxTokens,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown prompt format %q", domain.ErrConfiguration, a.PromptFormat)
	}
}

// Registry 模型 ID 到 Adapter 的映射
type Registry struct {
	adapters map[string]*Adapter
}

// NewRegistry 根据配置注册支持的模型
func NewRegistry(cfg config.LLMConfig) *Registry {
	r := &Registry{adapters: make(map[string]*Adapter)}
	r.Register(NewClaudeAdapter(domain.ModelClaudeOpus, cfg.Anthropic))
	r.Register(NewOpenAIAdapter(domain.ModelGPT4o, cfg.OpenAI))
	return r
}

// Register 注册 Adapter，同名覆盖
func (r *Registry) Register(a *Adapter) {
	r.adapters[a.ModelID] = a
}

// Lookup 查找模型配置，未知模型返回 ErrConfiguration
func (r *Registry) Lookup(modelID string) (*Adapter, error) {
	a, ok := r.adapters[modelID]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported model %q", domain.ErrConfiguration, modelID)
	}
	return a, nil
}

// Models 返回已注册的模型 ID（排序后）
func (r *Registry) Models() []string {
	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewClaudeAdapter Anthropic Messages API
func NewClaudeAdapter(modelID string, cfg config.AnthropicConfig) *Adapter {
	version := cfg.Version
	return &Adapter{
		ModelID:      modelID,
		Endpoint:     cfg.APIURL,
		MaxTokens:    cfg.MaxTokens,
		PromptFormat: FormatSingle,
		APIKey:       cfg.APIKey,
		headers: func(apiKey string) http.Header {
			h := http.Header{}
			h.Set("Content-Type", "application/json")
			h.Set("x-api-key", apiKey)
			h.Set("anthropic-version", version)
			return h
		},
		extract: extractAnthropic,
	}
}

// NewOpenAIAdapter OpenAI Chat Completions API
func NewOpenAIAdapter(modelID string, cfg config.OpenAIConfig) *Adapter {
	return &Adapter{
		ModelID:      modelID,
		Endpoint:     cfg.APIURL,
		MaxTokens:    cfg.MaxTokens,
		PromptFormat: FormatChat,
		APIKey:       cfg.APIKey,
		headers: func(apiKey string) http.Header {
			h := http.Header{}
			h.Set("Content-Type", "application/json")
			h.Set("Authorization", "Bearer "+apiKey)
			return h
		},
		extract: extractChat,
	}
}

func extractAnthropic(raw []byte) (*schema.Message, error) {
	var resp AnthropicResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &domain.UpstreamError{Body: fmt.Sprintf("malformed response: %v", err)}
	}
	if len(resp.Content) == 0 {
		return nil, &domain.UpstreamError{Body: "response has no content"}
	}
	return &schema.Message{
		Role:    schema.Assistant,
		Content: resp.Content[0].Text,
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: resp.StopReason,
			Usage: &schema.TokenUsage{
				PromptTokens:     resp.Usage.InputTokens,
				CompletionTokens: resp.Usage.OutputTokens,
				TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
			},
		},
	}, nil
}

func extractChat(raw []byte) (*schema.Message, error) {
	var resp ChatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &domain.UpstreamError{Body: fmt.Sprintf("malformed response: %v", err)}
	}
	if len(resp.Choices) == 0 {
		return nil, &domain.UpstreamError{Body: "response has no choices"}
	}
	choice := resp.Choices[0]
	return &schema.Message{
		Role:    schema.Assistant,
		Content: choice.Message.Content,
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: choice.FinishReason,
			Usage: &schema.TokenUsage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			},
		},
	}, nil
}

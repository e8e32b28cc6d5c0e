package llm

// WireMessage 上游请求中的单条消息
type WireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnthropicRequest Messages API 请求体
type AnthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []WireMessage `json:"messages"`
}

// AnthropicResponse Messages API 响应体
type AnthropicResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// ChatRequest OpenAI Chat Completions 请求体
type ChatRequest struct {
	Model     string        `json:"model"`
	Messages  []WireMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

// ChatResponse OpenAI Chat Completions 响应体
type ChatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

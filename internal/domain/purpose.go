package domain

// Purpose 生成内容的用途
type Purpose string

var (
	PurposeWatch     Purpose = "watch"     // 手表（Listing）描述
	PurposeReference Purpose = "reference" // 型号（Reference）描述
)

// Valid 判断用途是否受支持
func (p Purpose) Valid() bool {
	return p == PurposeWatch || p == PurposeReference
}

// 约定的提示词名称
const (
	PromptNameSystem     = "System Prompt"
	PromptNameStyleGuide = "Style Guide"

	// StyleGuideReferenceSystemPrompt reference 用途读取的单条风格指南
	StyleGuideReferenceSystemPrompt = "reference_description_system_prompt"
)

// 支持的模型
const (
	ModelClaudeOpus = "claude-3-opus-20240229"
	ModelGPT4o      = "gpt-4o"

	// DefaultModel 未指定 activeModel 时使用
	DefaultModel = ModelClaudeOpus
)

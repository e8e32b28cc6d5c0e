package model

import "time"

// GenerationLog 每次调用 LLM 的记录
type GenerationLog struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	BatchID          string    `json:"batch_id" gorm:"size:64;index"`
	Purpose          string    `json:"purpose" gorm:"size:20;index"`
	Model            string    `json:"model" gorm:"size:100"`
	Brand            string    `json:"brand" gorm:"size:255"`
	Reference        string    `json:"reference" gorm:"size:255"`
	ReferenceID      *uint     `json:"reference_id" gorm:"index"`
	Status           string    `json:"status" gorm:"size:20"` // success, failed
	ErrorMsg         string    `json:"error_msg" gorm:"size:2000"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	DurationMs       int64     `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName 指定表名
func (GenerationLog) TableName() string {
	return "generation_logs"
}

const (
	GenerationStatusSuccess = "success"
	GenerationStatusFailed  = "failed"
)

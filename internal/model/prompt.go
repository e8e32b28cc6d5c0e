package model

import "time"

// Prompt 按用途和模型区分的提示词
type Prompt struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null;index:idx_prompts_scope"`
	Content   string    `json:"content" gorm:"type:text"`
	Purpose   string    `json:"purpose" gorm:"size:20;not null;index:idx_prompts_scope"` // watch, reference
	AIModel   string    `json:"ai_model" gorm:"column:ai_model;size:100;not null;index:idx_prompts_scope"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Prompt) TableName() string {
	return "prompts"
}

// StyleGuide 通用风格指南，按名称读取
type StyleGuide struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;uniqueIndex;not null"`
	Content   string    `json:"content" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (StyleGuide) TableName() string {
	return "style_guides"
}

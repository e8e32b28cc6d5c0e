package model

import (
	"strings"
	"time"
)

// Reference 型号目录，保存可复用的描述文本
// (brand, reference_name) 在数据库层不做唯一约束，查询时按 id 取第一条
type Reference struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	Brand                string    `json:"brand" gorm:"size:255;index:idx_watch_references_brand_name"`
	ReferenceName        string    `json:"reference_name" gorm:"size:255;index:idx_watch_references_brand_name;index:idx_watch_references_name"`
	ReferenceDescription *string   `json:"reference_description" gorm:"type:text"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Reference) TableName() string {
	return "watch_references"
}

// HasDescription 描述非空
func (r *Reference) HasDescription() bool {
	return r.ReferenceDescription != nil && strings.TrimSpace(*r.ReferenceDescription) != ""
}

// Description 返回描述，未设置时为空串
func (r *Reference) Description() string {
	if r.ReferenceDescription == nil {
		return ""
	}
	return *r.ReferenceDescription
}

package model

import (
	"strings"
	"time"
)

// Watch 在售手表（Listing）
// 与 Reference 没有外键，通过 (brand, model_reference) 与 (brand, reference_name) 的取值匹配
type Watch struct {
	ID                    uint      `json:"id" gorm:"primaryKey"`
	Brand                 string    `json:"brand" gorm:"size:255;index:idx_watches_brand_ref"`
	ModelName             string    `json:"model_name" gorm:"size:255"`
	ModelReference        *string   `json:"model_reference" gorm:"size:255;index:idx_watches_brand_ref"`
	CaseMaterial          string    `json:"case_material" gorm:"size:255"`
	Year                  *int      `json:"year"`
	Movement              string    `json:"movement" gorm:"size:100"`
	ListingReference      string    `json:"listing_reference" gorm:"size:255"`
	Condition             string    `json:"condition" gorm:"size:100"`
	Description           string    `json:"description" gorm:"type:text"`
	AdditionalInformation string    `json:"additional_information" gorm:"type:text"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Watch) TableName() string {
	return "watches"
}

// Reference 返回去除空白后的型号，未设置时为空串
func (w *Watch) Reference() string {
	if w.ModelReference == nil {
		return ""
	}
	return strings.TrimSpace(*w.ModelReference)
}

// WatchAttributes 生成描述时使用的手表属性，不要求已入库
type WatchAttributes struct {
	Brand                 string `json:"brand"`
	ModelName             string `json:"model_name"`
	ModelReference        string `json:"model_reference"`
	CaseMaterial          string `json:"case_material"`
	Year                  *int   `json:"year"`
	Movement              string `json:"movement"`
	ListingReference      string `json:"listing_reference"`
	Condition             string `json:"condition"`
	AdditionalInformation string `json:"additional_information"`
}

// Attributes 提取用于生成的属性
func (w *Watch) Attributes() WatchAttributes {
	return WatchAttributes{
		Brand:                 w.Brand,
		ModelName:             w.ModelName,
		ModelReference:        w.Reference(),
		CaseMaterial:          w.CaseMaterial,
		Year:                  w.Year,
		Movement:              w.Movement,
		ListingReference:      w.ListingReference,
		Condition:             w.Condition,
		AdditionalInformation: w.AdditionalInformation,
	}
}

package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TemplateParameters 模板的默认生成参数
type TemplateParameters struct {
	PromptPrefix   string   `json:"prompt_prefix,omitempty"`
	PromptSuffix   string   `json:"prompt_suffix,omitempty"`
	NegativePrompt string   `json:"negative_prompt,omitempty"`
	StyleStrength  *float64 `json:"style_strength,omitempty"`
	AspectRatio    string   `json:"aspect_ratio,omitempty"`
	Quality        string   `json:"quality,omitempty"`
	Seed           *int64   `json:"seed,omitempty"`
}

// Value 实现 driver.Valuer 接口。
func (p TemplateParameters) Value() (driver.Value, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan 实现 sql.Scanner 接口。
func (p *TemplateParameters) Scan(value interface{}) error {
	if value == nil {
		*p = TemplateParameters{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			*p = TemplateParameters{}
			return nil
		}
		return json.Unmarshal(v, p)
	case string:
		if v == "" {
			*p = TemplateParameters{}
			return nil
		}
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported type for TemplateParameters: %T", value)
	}
}

// DbStyleTemplate 风格模板表，ID 即风格标识（例如 anime）
type DbStyleTemplate struct {
	ID          string             `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name        string             `gorm:"type:varchar(100);not null" json:"name"`
	Category    string             `gorm:"type:varchar(50);index" json:"category"`
	Description string             `gorm:"type:varchar(500)" json:"description"`
	Parameters  TemplateParameters `gorm:"type:text" json:"parameters"`
	UsageCount  int64              `gorm:"not null;default:0" json:"usage_count"`
	IsFeatured  bool               `gorm:"not null;default:false;index" json:"is_featured"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func (DbStyleTemplate) TableName() string {
	return "style_templates"
}

// TemplateQuery 模板列表查询参数
type TemplateQuery struct {
	Category string
	Featured bool
}

// TemplateItem 模板列表项，附带热度信息
type TemplateItem struct {
	DbStyleTemplate
	Popularity int64 `json:"popularity"`
	Trending   bool  `json:"trending"`
}

// CreateTemplateRequest 创建模板请求
type CreateTemplateRequest struct {
	Name        string             `json:"name"`
	Category    string             `json:"category"`
	Description string             `json:"description"`
	Parameters  TemplateParameters `json:"parameters"`
	IsFeatured  bool               `json:"is_featured"`
}

package entity

import "time"

// DbGeneratedImage 生成图片记录，ID 与返回给客户端的 image_id 一致
type DbGeneratedImage struct {
	ID             string      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID         string      `gorm:"type:varchar(36);index" json:"user_id"`
	Prompt         string      `gorm:"type:text" json:"prompt"`
	EnhancedPrompt string      `gorm:"type:text" json:"enhanced_prompt"`
	NegativePrompt string      `gorm:"type:text" json:"negative_prompt,omitempty"`
	StyleTemplate  string      `gorm:"type:varchar(64);index" json:"style_template"`
	AspectRatio    string      `gorm:"type:varchar(16)" json:"aspect_ratio"`
	Quality        string      `gorm:"type:varchar(16);index" json:"quality"`
	ImageURL       string      `gorm:"type:text" json:"image_url"`
	ThumbnailURL   string      `gorm:"type:text" json:"thumbnail_url"`
	StorageKey     string      `gorm:"type:varchar(255)" json:"-"`
	Metadata       JSONMap     `gorm:"type:text" json:"metadata"`
	IsPublic       bool        `gorm:"not null;default:false" json:"is_public"`
	Tags           StringArray `gorm:"type:text" json:"tags"`
	CreatedAt      time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (DbGeneratedImage) TableName() string {
	return "generated_images"
}

// ImageQuery 图库查询参数
type ImageQuery struct {
	BaseParams
	UserID        string     `form:"user_id"`
	StyleTemplate string     `form:"style_template"`
	Quality       string     `form:"quality"`
	From          *time.Time `form:"-"`
	To            *time.Time `form:"-"`
}

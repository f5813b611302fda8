package model

import (
	"context"
	"time"

	"imagestudio/internal/entity"
)

// Repository 定义数据库操作接口，记录不存在时返回 gorm.ErrRecordNotFound
type Repository interface {
	Ping(ctx context.Context) error

	// 用户额度
	GetUser(ctx context.Context, id string) (*entity.DbUser, error)
	IncrementGenerationCount(ctx context.Context, userID string, now time.Time) error
	ResetGenerationCount(ctx context.Context, userID, window string, now time.Time) error

	// 生成图片
	CreateGeneratedImage(ctx context.Context, image *entity.DbGeneratedImage) error
	GetGeneratedImage(ctx context.Context, id string) (*entity.DbGeneratedImage, error)
	ListGeneratedImages(ctx context.Context, params *entity.ImageQuery) ([]entity.DbGeneratedImage, *entity.Meta, error)
	DeleteGeneratedImage(ctx context.Context, id, userID string) error

	// 风格模板
	ListTemplates(ctx context.Context, params *entity.TemplateQuery) ([]entity.DbStyleTemplate, error)
	GetTemplate(ctx context.Context, id string) (*entity.DbStyleTemplate, error)
	CreateTemplate(ctx context.Context, template *entity.DbStyleTemplate) error
	IncrementTemplateUsage(ctx context.Context, id string) error
}

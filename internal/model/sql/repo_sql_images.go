package sql

import (
	"context"
	"fmt"
	"strings"

	"imagestudio/internal/entity"

	"gorm.io/gorm"
)

// CreateGeneratedImage inserts a generated-image record.
func (r *GormRepository) CreateGeneratedImage(ctx context.Context, image *entity.DbGeneratedImage) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if image == nil {
		return fmt.Errorf("image is nil")
	}
	if strings.TrimSpace(image.ID) == "" {
		return fmt.Errorf("image id is empty")
	}
	return r.db.WithContext(ctx).Create(image).Error
}

// GetGeneratedImage loads a single record by image id.
func (r *GormRepository) GetGeneratedImage(ctx context.Context, id string) (*entity.DbGeneratedImage, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, fmt.Errorf("invalid image id")
	}
	var image entity.DbGeneratedImage
	if err := r.db.WithContext(ctx).Where("id = ?", trimmed).First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// ListGeneratedImages returns a user's images, newest first.
func (r *GormRepository) ListGeneratedImages(ctx context.Context, params *entity.ImageQuery) ([]entity.DbGeneratedImage, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}
	if params == nil || strings.TrimSpace(params.UserID) == "" {
		return nil, nil, fmt.Errorf("user id is required")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbGeneratedImage{}).Where("user_id = ?", strings.TrimSpace(params.UserID))
	if trimmed := strings.TrimSpace(params.StyleTemplate); trimmed != "" {
		query = query.Where("style_template = ?", trimmed)
	}
	if trimmed := strings.TrimSpace(params.Quality); trimmed != "" {
		query = query.Where("quality = ?", trimmed)
	}
	if params.From != nil {
		query = query.Where("created_at >= ?", params.From.UTC())
	}
	if params.To != nil {
		query = query.Where("created_at <= ?", params.To.UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	page, limit, offset := paginate(params.BaseParams)
	var images []entity.DbGeneratedImage
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&images).Error; err != nil {
		return nil, nil, err
	}
	return images, entity.NewMeta(total, page, limit), nil
}

// DeleteGeneratedImage removes a record only when it belongs to userID.
func (r *GormRepository) DeleteGeneratedImage(ctx context.Context, id, userID string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(id) == "" || strings.TrimSpace(userID) == "" {
		return fmt.Errorf("invalid image id")
	}
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", strings.TrimSpace(id), strings.TrimSpace(userID)).
		Delete(&entity.DbGeneratedImage{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

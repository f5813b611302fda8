package sql

import (
	"context"
	"fmt"
	"strings"

	"imagestudio/internal/entity"

	"gorm.io/gorm"
)

// ListTemplates returns templates ordered by usage. Featured takes precedence
// over the category filter.
func (r *GormRepository) ListTemplates(ctx context.Context, params *entity.TemplateQuery) ([]entity.DbStyleTemplate, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbStyleTemplate{})
	if params != nil {
		if params.Featured {
			query = query.Where("is_featured = ?", true)
		} else if trimmed := strings.TrimSpace(params.Category); trimmed != "" {
			query = query.Where("category = ?", trimmed)
		}
	}

	var templates []entity.DbStyleTemplate
	if err := query.Order("usage_count DESC, created_at DESC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// GetTemplate loads a template by ID.
func (r *GormRepository) GetTemplate(ctx context.Context, id string) (*entity.DbStyleTemplate, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, fmt.Errorf("invalid template id")
	}
	var template entity.DbStyleTemplate
	if err := r.db.WithContext(ctx).Where("id = ?", trimmed).First(&template).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// CreateTemplate persists a new template.
func (r *GormRepository) CreateTemplate(ctx context.Context, template *entity.DbStyleTemplate) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if template == nil {
		return fmt.Errorf("template is nil")
	}
	if strings.TrimSpace(template.ID) == "" {
		return fmt.Errorf("template id is empty")
	}
	return r.db.WithContext(ctx).Create(template).Error
}

// IncrementTemplateUsage adds one to usage_count.
func (r *GormRepository) IncrementTemplateUsage(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return fmt.Errorf("invalid template id")
	}
	result := r.db.WithContext(ctx).Model(&entity.DbStyleTemplate{}).
		Where("id = ?", trimmed).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

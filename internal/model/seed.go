package model

import (
	"context"
	"errors"

	"imagestudio/internal/entity"
	"imagestudio/internal/preset"
	"imagestudio/internal/prompt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BuiltinTemplates 把内置风格转换为模板记录，数据库不可用时也作为兜底列表
func BuiltinTemplates() []entity.DbStyleTemplate {
	styles := prompt.Styles()
	templates := make([]entity.DbStyleTemplate, 0, len(styles))
	for _, style := range styles {
		templates = append(templates, entity.DbStyleTemplate{
			ID:          style.ID,
			Name:        style.Name,
			Category:    style.Category,
			Description: style.Descriptor,
			Parameters: entity.TemplateParameters{
				PromptSuffix: style.Descriptor,
				AspectRatio:  preset.DefaultAspectRatio,
				Quality:      preset.DefaultQuality,
			},
		})
	}
	return templates
}

// SeedDefaultTemplates 确保内置风格模板存在，已有记录不覆盖
func SeedDefaultTemplates(ctx context.Context, repo Repository) error {
	if repo == nil {
		return nil
	}

	created := 0
	for _, tpl := range BuiltinTemplates() {
		_, err := repo.GetTemplate(ctx, tpl.ID)
		switch {
		case err == nil:
			continue
		case errors.Is(err, gorm.ErrRecordNotFound):
			record := tpl
			if err := repo.CreateTemplate(ctx, &record); err != nil {
				return err
			}
			created++
		default:
			return err
		}
	}
	if created > 0 {
		logrus.WithField("created", created).Info("style_templates_seeded")
	}
	return nil
}

package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"imagestudio/internal/entity"
	"imagestudio/internal/model"
	"imagestudio/internal/preset"
	"imagestudio/internal/prompt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TrendingThreshold 使用次数超过该值的模板标记为 trending
const TrendingThreshold = 500

// TemplateListQuery 模板列表参数，Limit/Offset 均为空时不分页
type TemplateListQuery struct {
	Category string
	Featured bool
	Limit    *int
	Offset   *int
}

// TemplateList 模板列表结果
type TemplateList struct {
	Templates  []entity.TemplateItem `json:"templates"`
	Total      int                   `json:"total"`
	Categories []string              `json:"categories"`
	Fallback   bool                  `json:"-"`
}

// TemplateService 风格模板查询与创建
type TemplateService struct {
	repo model.Repository
}

func NewTemplateService(repo model.Repository) *TemplateService {
	return &TemplateService{repo: repo}
}

// List 数据库不可用时回退到内置模板
func (s *TemplateService) List(ctx context.Context, query TemplateListQuery) TemplateList {
	templates, err := s.load(ctx, query)
	fallback := false
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"category": query.Category,
			"featured": query.Featured,
		}).Warn("template_list_fallback")
		templates = model.BuiltinTemplates()
		fallback = true
	}

	if query.Limit != nil || query.Offset != nil {
		templates = paginateTemplates(templates, query.Limit, query.Offset)
	}

	items := make([]entity.TemplateItem, 0, len(templates))
	for _, tpl := range templates {
		items = append(items, entity.TemplateItem{
			DbStyleTemplate: tpl,
			Popularity:      tpl.UsageCount,
			Trending:        tpl.UsageCount > TrendingThreshold,
		})
	}

	categories := make([]string, len(prompt.Categories))
	copy(categories, prompt.Categories)

	return TemplateList{
		Templates:  items,
		Total:      len(items),
		Categories: categories,
		Fallback:   fallback,
	}
}

func (s *TemplateService) load(ctx context.Context, query TemplateListQuery) ([]entity.DbStyleTemplate, error) {
	if s.repo == nil {
		return nil, newError(KindPersistence, "repository unavailable", nil)
	}
	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.repo.ListTemplates(reqCtx, &entity.TemplateQuery{
		Category: strings.TrimSpace(query.Category),
		Featured: query.Featured,
	})
}

func paginateTemplates(templates []entity.DbStyleTemplate, limitPtr, offsetPtr *int) []entity.DbStyleTemplate {
	limit := 20
	offset := 0
	if limitPtr != nil && *limitPtr > 0 {
		limit = *limitPtr
	}
	if offsetPtr != nil && *offsetPtr > 0 {
		offset = *offsetPtr
	}
	if offset >= len(templates) {
		return []entity.DbStyleTemplate{}
	}
	end := offset + limit
	if end > len(templates) {
		end = len(templates)
	}
	return templates[offset:end]
}

// Create 校验并保存新模板
func (s *TemplateService) Create(ctx context.Context, req entity.CreateTemplateRequest) (*entity.DbStyleTemplate, error) {
	if err := validateTemplateRequest(&req); err != nil {
		return nil, err
	}
	if s.repo == nil {
		return nil, newError(KindInternal, "Failed to create template", nil)
	}

	template := entity.DbStyleTemplate{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Parameters:  req.Parameters,
		IsFeatured:  req.IsFeatured,
	}

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.repo.CreateTemplate(reqCtx, &template); err != nil {
		return nil, newError(KindInternal, "Failed to create template", err)
	}
	logrus.WithFields(logrus.Fields{
		"template_id": template.ID,
		"category":    template.Category,
	}).Info("style_template_created")
	return &template, nil
}

func validateTemplateRequest(req *entity.CreateTemplateRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	req.Description = strings.TrimSpace(req.Description)

	var problems []string
	checkLength := func(field, value string, max int) {
		n := utf8.RuneCountInString(value)
		if n == 0 {
			problems = append(problems, field+" is required")
		} else if n > max {
			problems = append(problems, field+" is too long")
		}
	}
	checkLength("name", req.Name, 100)
	checkLength("category", req.Category, 50)
	checkLength("description", req.Description, 500)

	params := req.Parameters
	if params.StyleStrength == nil || *params.StyleStrength < 0.1 || *params.StyleStrength > 1.0 {
		problems = append(problems, "parameters.style_strength must be between 0.1 and 1.0")
	}
	if !preset.IsValidAspectRatio(params.AspectRatio) {
		problems = append(problems, "parameters.aspect_ratio is invalid")
	}
	if !preset.IsValidQuality(params.Quality) {
		problems = append(problems, "parameters.quality is invalid")
	}
	if params.Seed != nil && (*params.Seed < 0 || *params.Seed > MaxSeed) {
		problems = append(problems, "parameters.seed is out of range")
	}

	if len(problems) > 0 {
		return newError(KindValidation, "Validation error: "+strings.Join(problems, ", "), nil)
	}
	return nil
}

// Package memory is a process-local Repository used for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"imagestudio/internal/entity"

	"gorm.io/gorm"
)

type Repository struct {
	mu        sync.RWMutex
	users     map[string]entity.DbUser
	images    map[string]entity.DbGeneratedImage
	templates map[string]entity.DbStyleTemplate
	now       func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		users:     make(map[string]entity.DbUser),
		images:    make(map[string]entity.DbGeneratedImage),
		templates: make(map[string]entity.DbStyleTemplate),
		now:       time.Now,
	}
}

func (r *Repository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *Repository) GetUser(_ context.Context, id string) (*entity.DbUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[strings.TrimSpace(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

// PutUser stores a user as-is.
func (r *Repository) PutUser(user entity.DbUser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
}

func (r *Repository) IncrementGenerationCount(_ context.Context, userID string, now time.Time) error {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return fmt.Errorf("invalid user id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[trimmed]
	if !ok {
		user = entity.DbUser{ID: trimmed, CreatedAt: now.UTC()}
	}
	user.ApplyGeneration(now)
	user.UpdatedAt = now.UTC()
	r.users[trimmed] = user
	return nil
}

func (r *Repository) ResetGenerationCount(_ context.Context, userID, window string, now time.Time) error {
	trimmed := strings.TrimSpace(userID)
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[trimmed]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if err := user.ResetCounters(window, now); err != nil {
		return err
	}
	user.UpdatedAt = now.UTC()
	r.users[trimmed] = user
	return nil
}

func (r *Repository) CreateGeneratedImage(_ context.Context, image *entity.DbGeneratedImage) error {
	if image == nil || strings.TrimSpace(image.ID) == "" {
		return fmt.Errorf("image id is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.images[image.ID]; exists {
		return fmt.Errorf("image %s already exists", image.ID)
	}
	if image.CreatedAt.IsZero() {
		image.CreatedAt = r.now().UTC()
	}
	image.UpdatedAt = image.CreatedAt
	r.images[image.ID] = *image
	return nil
}

func (r *Repository) GetGeneratedImage(_ context.Context, id string) (*entity.DbGeneratedImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	image, ok := r.images[strings.TrimSpace(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &image, nil
}

func (r *Repository) ListGeneratedImages(_ context.Context, params *entity.ImageQuery) ([]entity.DbGeneratedImage, *entity.Meta, error) {
	if params == nil || strings.TrimSpace(params.UserID) == "" {
		return nil, nil, fmt.Errorf("user id is required")
	}
	r.mu.RLock()
	matched := make([]entity.DbGeneratedImage, 0)
	for _, image := range r.images {
		if image.UserID != strings.TrimSpace(params.UserID) {
			continue
		}
		if params.StyleTemplate != "" && image.StyleTemplate != params.StyleTemplate {
			continue
		}
		if params.Quality != "" && image.Quality != params.Quality {
			continue
		}
		if params.From != nil && image.CreatedAt.Before(*params.From) {
			continue
		}
		if params.To != nil && image.CreatedAt.After(*params.To) {
			continue
		}
		matched = append(matched, image)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page, limit := 1, 20
	if params.Page > 0 {
		page = int(params.Page)
	}
	if params.Limit > 0 {
		limit = int(params.Limit)
	}
	if limit > 100 {
		limit = 100
	}
	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], entity.NewMeta(total, page, limit), nil
}

func (r *Repository) DeleteGeneratedImage(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	image, ok := r.images[strings.TrimSpace(id)]
	if !ok || image.UserID != strings.TrimSpace(userID) {
		return gorm.ErrRecordNotFound
	}
	delete(r.images, image.ID)
	return nil
}

func (r *Repository) ListTemplates(_ context.Context, params *entity.TemplateQuery) ([]entity.DbStyleTemplate, error) {
	r.mu.RLock()
	templates := make([]entity.DbStyleTemplate, 0, len(r.templates))
	for _, tpl := range r.templates {
		if params != nil {
			if params.Featured {
				if !tpl.IsFeatured {
					continue
				}
			} else if params.Category != "" && tpl.Category != params.Category {
				continue
			}
		}
		templates = append(templates, tpl)
	}
	r.mu.RUnlock()

	sort.Slice(templates, func(i, j int) bool {
		if templates[i].UsageCount != templates[j].UsageCount {
			return templates[i].UsageCount > templates[j].UsageCount
		}
		if !templates[i].CreatedAt.Equal(templates[j].CreatedAt) {
			return templates[i].CreatedAt.After(templates[j].CreatedAt)
		}
		return templates[i].ID < templates[j].ID
	})
	return templates, nil
}

func (r *Repository) GetTemplate(_ context.Context, id string) (*entity.DbStyleTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.templates[strings.TrimSpace(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &tpl, nil
}

func (r *Repository) CreateTemplate(_ context.Context, template *entity.DbStyleTemplate) error {
	if template == nil || strings.TrimSpace(template.ID) == "" {
		return fmt.Errorf("template id is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.templates[template.ID]; exists {
		return fmt.Errorf("template %s already exists", template.ID)
	}
	now := r.now().UTC()
	if template.CreatedAt.IsZero() {
		template.CreatedAt = now
	}
	template.UpdatedAt = now
	r.templates[template.ID] = *template
	return nil
}

func (r *Repository) IncrementTemplateUsage(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tpl, ok := r.templates[strings.TrimSpace(id)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	tpl.UsageCount++
	r.templates[tpl.ID] = tpl
	return nil
}

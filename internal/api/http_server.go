package api

import (
	"context"
	"strings"
	"time"

	"imagestudio/internal/auth"
	"imagestudio/internal/config"
	"imagestudio/internal/llm"
	"imagestudio/internal/model"
	"imagestudio/internal/ratelimit"
	"imagestudio/internal/service"
	"imagestudio/internal/storage"

	"github.com/gin-gonic/gin"
)

// Dependencies HTTP 层依赖的外部组件，均可为空
type Dependencies struct {
	Repo      model.Repository
	Storage   storage.Storage
	Limiter   ratelimit.Limiter
	Generator llm.ImageGenerator
	Tasks     service.TaskSubmitter
}

// pinger 可探活的组件，例如 Redis 限流器
type pinger interface {
	Ping(ctx context.Context) error
}

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg       config.Config
	repo      model.Repository
	limiter   ratelimit.Limiter
	admin     *auth.AdminAuthenticator
	startedAt time.Time
	now       func() time.Time

	// 服务层
	generationService *service.GenerationService
	limitsService     *service.LimitsService
	templateService   *service.TemplateService
	galleryService    *service.GalleryService
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, deps Dependencies) (*HTTPHandler, error) {
	expiry := time.Duration(cfg.JWTExpirationMinutes) * time.Minute
	authManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, expiry)
	if err != nil {
		return nil, err
	}

	limitsSvc := service.NewLimitsService(deps.Repo, deps.Limiter, cfg.DailyGenerationLimit, cfg.MonthlyGenerationLimit)
	generationSvc := service.NewGenerationService(
		deps.Generator,
		deps.Limiter,
		limitsSvc,
		deps.Repo,
		deps.Storage,
		deps.Tasks,
		service.GenerationConfig{
			DailyLimit:      cfg.DailyGenerationLimit,
			MonthlyLimit:    cfg.MonthlyGenerationLimit,
			ImageBaseURL:    cfg.ImagePublicBaseURL,
			RateLimitWindow: cfg.RateLimitWindow,
		},
	)

	return &HTTPHandler{
		cfg:               cfg,
		repo:              deps.Repo,
		limiter:           deps.Limiter,
		admin:             auth.NewAdminAuthenticator(cfg.AdminPasswordHash, authManager),
		startedAt:         time.Now(),
		now:               time.Now,
		generationService: generationSvc,
		limitsService:     limitsSvc,
		templateService:   service.NewTemplateService(deps.Repo),
		galleryService:    service.NewGalleryService(deps.Repo, deps.Storage),
	}, nil
}

// RegisterRoutes 注册 /api 下的全部路由
func (h *HTTPHandler) RegisterRoutes(r gin.IRouter) {
	apiGroup := r.Group("/api")

	apiGroup.GET("/health", h.Health)

	apiGroup.GET("/generate", h.GenerateDocs)
	apiGroup.POST("/generate", h.Generate)

	apiGroup.GET("/templates", h.ListTemplates)
	apiGroup.POST("/templates", h.RequireAdmin(), h.CreateTemplate)

	apiGroup.GET("/user/limits", h.GetUserLimits)
	apiGroup.POST("/user/limits", h.RequireAdmin(), h.ResetUserLimits)

	apiGroup.GET("/gallery", h.ListGallery)
	apiGroup.DELETE("/gallery/:id", h.DeleteGalleryImage)

	apiGroup.GET("/images/:id", h.ServeImage)
	apiGroup.GET("/images/:id/thumbnail", h.ServeImage)

	apiGroup.POST("/prompts/analyze", h.AnalyzePrompt)

	apiGroup.POST("/admin/login", h.AdminLogin)
}

// bearerToken 解析 Authorization: Bearer <token>
func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

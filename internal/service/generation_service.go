package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"imagestudio/internal/entity"
	"imagestudio/internal/llm"
	"imagestudio/internal/metrics"
	"imagestudio/internal/model"
	"imagestudio/internal/moderation"
	"imagestudio/internal/preset"
	"imagestudio/internal/prompt"
	"imagestudio/internal/ratelimit"
	"imagestudio/internal/storage"
	"imagestudio/internal/tasks"
	"imagestudio/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultImageBaseURL = "/api/images"
	imageCategory       = "images"
)

// TaskSubmitter 接收异步副作用任务，队列满时丢弃
type TaskSubmitter interface {
	Submit(task tasks.Task) bool
}

// GenerationConfig 生成流程的额度与 URL 配置
type GenerationConfig struct {
	DailyLimit      int
	MonthlyLimit    int
	ImageBaseURL    string
	RateLimitWindow time.Duration // 限流器无法报告剩余时间时作为 Retry-After
}

// GenerationService 串联限流、内容审核、提示词增强与外部生成调用
type GenerationService struct {
	generator llm.ImageGenerator
	limiter   ratelimit.Limiter
	limits    *LimitsService
	repo      model.Repository
	storage   storage.Storage
	queue     TaskSubmitter
	cfg       GenerationConfig
	now       func() time.Time
}

// NewGenerationService 创建生成服务实例
func NewGenerationService(
	generator llm.ImageGenerator,
	limiter ratelimit.Limiter,
	limits *LimitsService,
	repo model.Repository,
	store storage.Storage,
	queue TaskSubmitter,
	cfg GenerationConfig,
) *GenerationService {
	if strings.TrimSpace(cfg.ImageBaseURL) == "" {
		cfg.ImageBaseURL = defaultImageBaseURL
	}
	cfg.ImageBaseURL = strings.TrimRight(strings.TrimSpace(cfg.ImageBaseURL), "/")
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = ratelimit.DefaultWindowDuration
	}
	return &GenerationService{
		generator: generator,
		limiter:   limiter,
		limits:    limits,
		repo:      repo,
		storage:   store,
		queue:     queue,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Process 完整处理一次生成请求：默认值、校验、限流、审核、生成、异步落库
func (s *GenerationService) Process(ctx context.Context, req entity.GenerationRequest) (*entity.GenerationResponseData, error) {
	ApplyGenerationDefaults(&req)
	if err := ValidateGenerationRequest(&req); err != nil {
		s.recordOutcome(err)
		return nil, err
	}

	logger := logrus.WithFields(logrus.Fields{
		"user_id":        req.UserID,
		"style_template": req.StyleTemplate,
		"aspect_ratio":   req.AspectRatio,
		"quality":        req.Quality,
	})

	var summary *entity.RemainingSummary
	if req.UserID != "" {
		if s.limits != nil {
			limits, err := s.limits.Report(ctx, req.UserID)
			if err != nil {
				logger.WithError(err).Warn("user_limits_lookup_failed")
			} else {
				summary = &entity.RemainingSummary{
					DailyRemaining:   limits.DailyRemaining,
					MonthlyRemaining: limits.MonthlyRemaining,
				}
			}
		}
		if err := s.admit(ctx, req.UserID, logger); err != nil {
			s.recordOutcome(err)
			return nil, err
		}
	}

	if screened := moderation.Screen(req.Prompt); screened.Blocked {
		metrics.ContentBlockedTotal.Inc()
		logger.WithField("keyword", screened.MatchedKeyword).Info("prompt_blocked")
		err := newError(KindSafety, moderation.BlockedMessage, nil)
		s.recordOutcome(err)
		return nil, err
	}

	result, err := s.Generate(ctx, req)
	if err != nil {
		s.recordOutcome(err)
		logger.WithError(err).WithField("kind", string(KindOf(err))).Warn("image_generation_failed")
		return nil, err
	}

	s.enqueueSideEffects(req, result)
	s.recordOutcome(nil)
	logger.WithFields(logrus.Fields{
		"image_id":        result.ImageID,
		"generation_time": result.GenerationTime,
	}).Info("image_generated")

	return &entity.GenerationResponseData{
		ImageID:        result.ImageID,
		ImageURL:       result.ImageURL,
		ThumbnailURL:   result.ThumbnailURL,
		Metadata:       result.Metadata,
		GenerationTime: result.GenerationTime,
		UserLimits:     summary,
	}, nil
}

// Generate 增强提示词、解析预设并调用外部生成接口
func (s *GenerationService) Generate(ctx context.Context, req entity.GenerationRequest) (*entity.GenerationResult, error) {
	start := s.now()

	if msg := promptProblem(req.Prompt); msg != "" {
		return nil, newError(KindValidation, msg, nil)
	}

	enhanced, err := prompt.Enhance(req.Prompt, req.StyleTemplate)
	if err != nil {
		return nil, newError(KindSafety, MsgUnsafePrompt, err)
	}

	dims := preset.ResolveDimensions(req.AspectRatio)
	quality := preset.ResolveQuality(req.Quality)

	if s.generator == nil {
		return nil, newError(KindUpstream, MsgInternal, fmt.Errorf("image generator not configured"))
	}

	callStart := time.Now()
	resp, err := s.generator.GenerateImage(ctx, req.APIKey, llm.ImageRequest{
		Prompt:         enhanced,
		NegativePrompt: req.NegativePrompt,
		AspectRatio:    req.AspectRatio,
		Quality:        req.Quality,
		Width:          dims.Width,
		Height:         dims.Height,
		Steps:          quality.Steps,
		GuidanceScale:  quality.GuidanceScale,
		Seed:           req.Seed,
	})
	metrics.GenerationDurationSeconds.Observe(time.Since(callStart).Seconds())
	if err != nil {
		return nil, classifyUpstream(err)
	}
	if resp == nil || strings.TrimSpace(resp.ImageData) == "" {
		return nil, classifyUpstream(llm.ErrNoImageData)
	}

	imageID := newImageID(s.now())
	elapsed := s.now().Sub(start).Milliseconds()

	metadata := entity.ImageMetadata{
		Model:            s.generator.Model(),
		Width:            dims.Width,
		Height:           dims.Height,
		Steps:            quality.Steps,
		GuidanceScale:    quality.GuidanceScale,
		Seed:             req.Seed,
		GenerationTimeMs: elapsed,
		TokenCount:       resp.TokenCount,
		FileSizeBytes:    utils.EstimateBase64Size(resp.ImageData),
	}

	return &entity.GenerationResult{
		ImageID:        imageID,
		ImageURL:       s.imageURL(imageID),
		ThumbnailURL:   s.imageURL(imageID) + "/thumbnail",
		EnhancedPrompt: enhanced,
		Metadata:       metadata,
		GenerationTime: elapsed,
		ImageData:      resp.ImageData,
		MimeType:       resp.MimeType,
	}, nil
}

// admit 先检查日额度再检查月额度。限流器本身出错时放行
func (s *GenerationService) admit(ctx context.Context, userID string, logger *logrus.Entry) error {
	if s.limiter == nil {
		return nil
	}
	checks := []struct {
		window  ratelimit.Window
		limit   int
		message string
	}{
		{ratelimit.Daily, s.cfg.DailyLimit, fmt.Sprintf("Daily generation limit exceeded (%d images/day). Try again tomorrow.", s.cfg.DailyLimit)},
		{ratelimit.Monthly, s.cfg.MonthlyLimit, fmt.Sprintf("Monthly generation limit exceeded (%d images/month). Try again later.", s.cfg.MonthlyLimit)},
	}
	for _, check := range checks {
		admitted, err := s.limiter.Admit(ctx, userID, check.window, check.limit)
		if err != nil {
			logger.WithError(err).WithField("window", string(check.window)).Warn("rate_limit_check_failed")
			continue
		}
		if !admitted {
			metrics.RateLimitRejectedTotal.WithLabelValues(string(check.window)).Inc()
			retryAfter := s.retryAfter(ctx, userID, check.window, logger)
			logger.WithFields(logrus.Fields{
				"window":      string(check.window),
				"retry_after": retryAfter.String(),
			}).Info("rate_limit_exceeded")
			rateErr := newError(KindRateLimit, check.message, nil)
			rateErr.RetryAfter = retryAfter
			return rateErr
		}
	}
	return nil
}

// retryAfter 优先使用限流器记录的窗口重置时间
func (s *GenerationService) retryAfter(ctx context.Context, userID string, window ratelimit.Window, logger *logrus.Entry) time.Duration {
	reporter, ok := s.limiter.(ratelimit.RetryReporter)
	if !ok {
		return s.cfg.RateLimitWindow
	}
	remaining, err := reporter.RetryAfter(ctx, userID, window)
	if err != nil {
		logger.WithError(err).Warn("rate_limit_retry_lookup_failed")
		return s.cfg.RateLimitWindow
	}
	if remaining <= 0 {
		return s.cfg.RateLimitWindow
	}
	return remaining
}

// enqueueSideEffects 提交存图、记录生成与模板计数任务，失败只记日志
func (s *GenerationService) enqueueSideEffects(req entity.GenerationRequest, result *entity.GenerationResult) {
	fields := logrus.Fields{
		"image_id":       result.ImageID,
		"user_id":        req.UserID,
		"style_template": req.StyleTemplate,
	}
	opts := ImageSaveOptions(result.ImageID)
	storageKey, _ := storage.ObjectKey(opts)

	if s.storage != nil {
		payload := utils.EnsureDataURL(result.ImageData, result.MimeType)
		s.submit(tasks.Task{
			Name:   "store_image",
			Fields: fields,
			Run: func(ctx context.Context) error {
				data, mimeType, err := utils.DecodeImagePayload(payload)
				if err != nil {
					return fmt.Errorf("decode image: %w", err)
				}
				saveOpts := opts
				saveOpts.ContentType = mimeType
				_, err = s.storage.Save(ctx, data, saveOpts)
				return err
			},
		})
	}

	if s.repo == nil {
		return
	}

	if req.UserID != "" {
		now := s.now()
		record := entity.DbGeneratedImage{
			ID:             result.ImageID,
			UserID:         req.UserID,
			Prompt:         req.Prompt,
			EnhancedPrompt: result.EnhancedPrompt,
			NegativePrompt: req.NegativePrompt,
			StyleTemplate:  req.StyleTemplate,
			AspectRatio:    req.AspectRatio,
			Quality:        req.Quality,
			ImageURL:       result.ImageURL,
			ThumbnailURL:   result.ThumbnailURL,
			StorageKey:     storageKey,
			Metadata:       metadataMap(result.Metadata),
			CreatedAt:      now.UTC(),
		}
		s.submit(tasks.Task{
			Name:   "record_generation",
			Fields: fields,
			Run: func(ctx context.Context) error {
				if err := s.repo.CreateGeneratedImage(ctx, &record); err != nil {
					return fmt.Errorf("create image record: %w", err)
				}
				if err := s.repo.IncrementGenerationCount(ctx, record.UserID, now); err != nil {
					return fmt.Errorf("increment generation count: %w", err)
				}
				return nil
			},
		})
	}

	if req.StyleTemplate != "" {
		templateID := req.StyleTemplate
		s.submit(tasks.Task{
			Name:   "increment_template_usage",
			Fields: fields,
			Run: func(ctx context.Context) error {
				return s.repo.IncrementTemplateUsage(ctx, templateID)
			},
		})
	}
}

func (s *GenerationService) submit(task tasks.Task) {
	if s.queue == nil {
		logrus.WithField("task", task.Name).WithFields(task.Fields).Debug("task_skipped_no_queue")
		return
	}
	s.queue.Submit(task)
}

func (s *GenerationService) recordOutcome(err error) {
	outcome := "success"
	if err != nil {
		outcome = string(KindOf(err))
	}
	metrics.GenerationRequestsTotal.WithLabelValues(outcome).Inc()
}

func (s *GenerationService) imageURL(imageID string) string {
	return s.cfg.ImageBaseURL + "/" + imageID
}

// ImageSaveOptions 图片在存储中的位置只由 ID 决定
func ImageSaveOptions(imageID string) storage.SaveOptions {
	return storage.SaveOptions{Category: imageCategory, BaseName: imageID}
}

// newImageID 生成 img_<unix 毫秒>_<8 位十六进制>
func newImageID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("img_%d_%s", now.UnixMilli(), suffix)
}

func metadataMap(meta entity.ImageMetadata) entity.JSONMap {
	out := entity.JSONMap{
		"model":           meta.Model,
		"width":           meta.Width,
		"height":          meta.Height,
		"steps":           meta.Steps,
		"guidance_scale":  meta.GuidanceScale,
		"generation_time": meta.GenerationTimeMs,
		"token_count":     meta.TokenCount,
		"file_size":       meta.FileSizeBytes,
	}
	if meta.Seed != nil {
		out["seed"] = *meta.Seed
	}
	return out
}

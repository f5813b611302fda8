package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"imagestudio/internal/api"
	"imagestudio/internal/auth"
	"imagestudio/internal/config"
	"imagestudio/internal/llm"
	"imagestudio/internal/metrics"
	"imagestudio/internal/model"
	"imagestudio/internal/ratelimit"
	"imagestudio/internal/storage"
	"imagestudio/internal/tasks"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash for ADMIN_PASSWORD_HASH and exit")
	flag.Parse()

	if *hashPassword != "" {
		hashed, err := auth.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hashed)
		return
	}

	// .env 不存在时直接使用环境变量
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("failed to load .env")
	}

	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		return
	}

	// 初始化logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if missing := cfg.MissingRequired(); len(missing) > 0 {
		logrus.WithField("missing", missing).Warn("required configuration missing")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise repository")
		return
	}
	if err := model.SeedDefaultTemplates(ctx, repo); err != nil {
		logrus.WithError(err).Warn("failed to seed default templates")
	}

	store, err := storage.NewStorage(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise storage")
		return
	}

	limiter, err := newLimiter(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise rate limiter")
		return
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.MustRegister(registry)

	queue := tasks.NewQueue(tasks.Config{
		Workers:   cfg.TaskWorkers,
		QueueSize: cfg.TaskQueueSize,
		Timeout:   cfg.TaskTimeout,
	})

	httpHandler, err := api.NewHTTPHandler(cfg, api.Dependencies{
		Repo:      repo,
		Storage:   store,
		Limiter:   limiter,
		Generator: llm.NewGeminiClient(cfg),
		Tasks:     queue,
	})
	if err != nil {
		logrus.WithError(err).Error("failed to initialise http handler")
		return
	}

	// 设置Gin模式
	if strings.EqualFold(cfg.GinMode, gin.DebugMode) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// 添加中间件
	r.Use(corsMiddleware(cfg.CORSAllowOrigins))
	r.Use(api.LoggingMiddleware())
	r.Use(gin.Recovery())
	r.Use(api.MetricsMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	httpHandler.RegisterRoutes(r)

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	logrus.WithField("host", serverHost).Info("服务器启动")
	// 创建HTTP服务器，生成请求可能持续到 Gemini 超时
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.GeminiTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("服务器启动失败")
			stop()
		}
	}()

	<-ctx.Done()
	logrus.Info("服务器关闭中")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("http server shutdown failed")
	}
	if err := queue.Close(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("task queue drain incomplete")
	}
}

// newLimiter 按配置创建内存或 Redis 限流器
func newLimiter(ctx context.Context, cfg config.Config) (ratelimit.Limiter, error) {
	window := cfg.RateLimitWindow
	if window <= 0 {
		window = ratelimit.DefaultWindowDuration
	}
	switch strings.ToLower(strings.TrimSpace(cfg.RateLimitBackend)) {
	case "redis":
		client, err := ratelimit.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return ratelimit.NewRedisLimiter(client, cfg.RateLimitKeyPrefix, window), nil
	case "", "memory":
		limiter := ratelimit.NewMemoryLimiter(window, time.Now)
		go limiter.RunJanitor(ctx, 10*time.Minute)
		return limiter, nil
	default:
		return nil, fmt.Errorf("unsupported rate limit backend: %s", cfg.RateLimitBackend)
	}
}

// corsMiddleware CORS跨域中间件
func corsMiddleware(origins []string) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length", "X-RateLimit-Limit-Daily", "X-RateLimit-Limit-Monthly", "X-Response-Time"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && strings.TrimSpace(origins[0]) == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	return cors.New(corsCfg)
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	healthOK       = "ok"
	healthDegraded = "degraded"
	healthError    = "error"
)

type serviceHealth struct {
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	ResponseTime int64  `json:"response_time,omitempty"`
}

// Health GET /api/health。数据库异常返回 503；限流器异常或缺少配置降级为 degraded
func (h *HTTPHandler) Health(c *gin.Context) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	services := map[string]serviceHealth{}
	overall := healthOK
	worsen := func(status string) {
		if status == healthError || (status == healthDegraded && overall == healthOK) {
			overall = status
		}
	}

	database := serviceHealth{Status: healthOK}
	if h.repo == nil {
		database = serviceHealth{Status: healthError, Error: "repository not configured"}
	} else if err := h.repo.Ping(ctx); err != nil {
		database = serviceHealth{Status: healthError, Error: err.Error()}
	}
	database.ResponseTime = time.Since(start).Milliseconds()
	services["database"] = database
	worsen(database.Status)

	limiter := serviceHealth{Status: healthOK}
	if h.limiter == nil {
		limiter = serviceHealth{Status: healthDegraded, Error: "rate limiter not configured"}
	} else if p, ok := h.limiter.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			limiter = serviceHealth{Status: healthDegraded, Error: err.Error()}
		}
	}
	services["rate_limiter"] = limiter
	worsen(limiter.Status)

	environment := serviceHealth{Status: healthOK}
	if missing := h.cfg.MissingRequired(); len(missing) > 0 {
		environment = serviceHealth{
			Status: healthError,
			Error:  "Missing environment variables: " + strings.Join(missing, ", "),
		}
		worsen(healthDegraded)
	}
	services["environment"] = environment

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	elapsed := time.Since(start).Milliseconds()
	statusCode := http.StatusOK
	if overall == healthError {
		statusCode = http.StatusServiceUnavailable
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("X-Response-Time", fmt.Sprintf("%dms", elapsed))
	c.JSON(statusCode, gin.H{
		"status":      overall,
		"timestamp":   h.now().UTC().Format(time.RFC3339Nano),
		"uptime":      time.Since(h.startedAt).Seconds(),
		"version":     h.cfg.AppVersion,
		"environment": h.cfg.AppEnv,
		"services":    services,
		"runtime": gin.H{
			"type":       "go",
			"version":    runtime.Version(),
			"platform":   runtime.GOOS + "/" + runtime.GOARCH,
			"goroutines": runtime.NumGoroutine(),
		},
		"memory": gin.H{
			"sys":        megabytes(mem.Sys),
			"heap_total": megabytes(mem.HeapSys),
			"heap_used":  megabytes(mem.HeapAlloc),
		},
		"response_time": elapsed,
	})
}

func megabytes(b uint64) string {
	return fmt.Sprintf("%d MB", (b+512*1024)/(1024*1024))
}

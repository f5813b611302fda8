package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// 1) Request volume by route and status
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "imagestudio_http_requests_total",
		Help: "Total number of HTTP requests handled.",
	}, []string{"method", "route", "status"})

	// 2) Concurrency (in flight)
	ActiveRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "imagestudio_active_requests",
		Help: "Current number of in-flight requests.",
	})

	// 3) Generation outcomes (success, validation, safety, rate_limit, auth, quota, upstream)
	GenerationRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "imagestudio_generation_requests_total",
		Help: "Generation requests by outcome.",
	}, []string{"outcome"})

	// 4) External generation latency
	GenerationDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "imagestudio_generation_duration_seconds",
		Help:    "Duration of the external image generation call.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 90, 120},
	})

	// 5) Rate limiting drops
	RateLimitRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "imagestudio_rate_limit_rejected_total",
		Help: "Requests rejected by the per-user rate limiter.",
	}, []string{"window"})

	// 6) Moderation blocks
	ContentBlockedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "imagestudio_content_blocked_total",
		Help: "Prompts blocked by the keyword screener.",
	})

	// 7) Best-effort side effects
	TaskFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "imagestudio_task_failures_total",
		Help: "Background side-effect tasks that failed.",
	}, []string{"task"})

	TaskDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "imagestudio_task_dropped_total",
		Help: "Background side-effect tasks dropped because the queue was full or closed.",
	}, []string{"task"})
)

func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		ActiveRequests,
		GenerationRequestsTotal,
		GenerationDurationSeconds,
		RateLimitRejectedTotal,
		ContentBlockedTotal,
		TaskFailuresTotal,
		TaskDroppedTotal,
	)
}

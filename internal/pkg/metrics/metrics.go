package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 业务指标，注册在默认 registry 上，由 /metrics 统一暴露
var (
	// StoryAnalyses 故事分析次数，result: model / fallback
	StoryAnalyses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storybook_story_analyses_total",
		Help: "Total number of story analyses, partitioned by whether the heuristic fallback was used.",
	}, []string{"result"})

	// SceneImages 场景插图数量，result: generated / placeholder
	SceneImages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storybook_scene_images_total",
		Help: "Total number of scene illustrations, partitioned by whether a placeholder was substituted.",
	}, []string{"result"})

	// ImageDownloads 下载代理调用次数
	ImageDownloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storybook_image_downloads_total",
		Help: "Total number of proxied image downloads, partitioned by outcome.",
	}, []string{"result"})

	// AIRequestDuration AI 端点请求耗时
	AIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storybook_ai_request_duration_seconds",
		Help:    "Latency of requests to the AI completion endpoint.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
	}, []string{"model", "outcome"})
)

const (
	ResultModel       = "model"
	ResultFallback    = "fallback"
	ResultGenerated   = "generated"
	ResultPlaceholder = "placeholder"

	ResultOK             = "ok"
	ResultInvalidURL     = "invalid_url"
	ResultUpstreamStatus = "upstream_status"
	ResultEmpty          = "empty"
	ResultTooLarge       = "too_large"
	ResultError          = "error"
)

package story

import (
	"time"

	"storybook/internal/config"
	"storybook/internal/service/story"
)

// Handler 故事插图处理器
// 所有 story 相关的 Handler 方法都通过这个结构体访问 Service
type Handler struct {
	storyService    story.StoryService
	analyzeTimeout  time.Duration
	generateTimeout time.Duration
	downloadTimeout time.Duration
}

// NewHandler 创建故事插图处理器
// 各接口的时间预算来自配置，0 表示不额外限制
func NewHandler(storyService story.StoryService, cfg *config.Config) *Handler {
	return &Handler{
		storyService:    storyService,
		analyzeTimeout:  cfg.Illustration.AnalyzeTimeout,
		generateTimeout: cfg.Illustration.GenerateTimeout,
		downloadTimeout: cfg.Download.Timeout,
	}
}

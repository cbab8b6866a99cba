package story

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storybook/internal/ai"
	"storybook/internal/config"
	"storybook/internal/model/story"
)

var (
	// ErrEmptyStory 故事内容为空
	ErrEmptyStory = errors.New("story is empty")
	// ErrNoScenes 没有可生成插图的场景
	ErrNoScenes = errors.New("no scenes provided")
	// ErrInvalidImageURL 下载地址为空或不是 http(s)
	ErrInvalidImageURL = errors.New("invalid image url")
	// ErrEmptyImage 上游返回的图片内容为空
	ErrEmptyImage = errors.New("downloaded image is empty")
	// ErrImageTooLarge 上游返回的图片超过 download.max_bytes
	ErrImageTooLarge = errors.New("downloaded image exceeds size limit")
)

// UpstreamStatusError 图片源站返回非 2xx 状态码
type UpstreamStatusError struct {
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("image source responded with status %d", e.StatusCode)
}

// AIClient 故事服务依赖的 AI 能力
// *ai.Client 实现了该接口，测试中可替换为假实现
type AIClient interface {
	Complete(ctx context.Context, model string, messages []ai.Message) (string, error)
	CompleteRaw(ctx context.Context, model string, messages []ai.Message) (map[string]any, error)
}

// StoryService 故事插图服务接口
// 定义 story 模块 service 层提供的能力，所有能力都是无状态的
type StoryService interface {
	// AnalyzeStory 将故事拆分为 1~5 个场景
	// 模型调用或解析失败时使用启发式兜底场景，只有故事为空时返回错误
	AnalyzeStory(ctx context.Context, storyText string) (*story.Analysis, error)

	// GenerateImages 并发为每个场景生成插图
	// 单个场景失败时使用占位图，结果与输入一一对应并按 order 升序
	GenerateImages(ctx context.Context, scenes []story.Scene) ([]story.ImageResult, error)

	// DownloadImage 代理下载远程图片
	DownloadImage(ctx context.Context, imageURL string) (*story.Download, error)
}

// storyService 故事插图服务实现
type storyService struct {
	aiClient       AIClient
	analysisModel  string
	imageModel     string
	placeholderURL string
	userAgent      string
	maxImageBytes  int64
	httpClient     *http.Client
}

// NewStoryService 创建故事插图服务
// httpClient 用于下载代理，为空时按 cfg.Download.Timeout 创建
func NewStoryService(cfg *config.Config, aiClient AIClient, httpClient *http.Client) StoryService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Download.Timeout}
	}
	userAgent := cfg.Download.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	maxImageBytes := cfg.Download.MaxBytes
	if maxImageBytes <= 0 {
		maxImageBytes = defaultMaxImageBytes
	}

	return &storyService{
		aiClient:       aiClient,
		analysisModel:  cfg.AI.AnalysisModel,
		imageModel:     cfg.AI.ImageModel,
		placeholderURL: cfg.Illustration.PlaceholderURL,
		userAgent:      userAgent,
		maxImageBytes:  maxImageBytes,
		httpClient:     httpClient,
	}
}

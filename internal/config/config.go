package config

import (
	"errors"
	"net/url"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	AI           AIConfig           `mapstructure:"ai"`
	Illustration IllustrationConfig `mapstructure:"illustration"`
	Download     DownloadConfig     `mapstructure:"download"`
	Log          LogConfig          `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AIConfig AI 服务配置
// 文本分析与图片生成共用同一个 OpenAI 兼容的 /chat/completions 端点
type AIConfig struct {
	BaseURL       string          `mapstructure:"base_url"`       // 端点基础 URL（不含 /chat/completions）
	APIKey        string          `mapstructure:"api_key"`        // Bearer 凭证
	CustomerID    string          `mapstructure:"customer_id"`    // CustomerId 请求头
	AnalysisModel string          `mapstructure:"analysis_model"` // 故事分析模型
	ImageModel    string          `mapstructure:"image_model"`    // 图片生成模型
	Timeout       time.Duration   `mapstructure:"timeout"`        // HTTP 客户端超时，0 表示不限制
	Options       AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig AI 模型参数（仅用于文本补全）
// 两者都必须大于 0：go-openai 按 omitempty 序列化，0 会被静默丢弃
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// IllustrationConfig 故事插图流程配置
type IllustrationConfig struct {
	PlaceholderURL  string        `mapstructure:"placeholder_url"`  // 图片生成失败时的占位图
	AnalyzeTimeout  time.Duration `mapstructure:"analyze_timeout"`  // 单次故事分析请求的时间预算
	GenerateTimeout time.Duration `mapstructure:"generate_timeout"` // 单次批量生图请求的时间预算
}

// DownloadConfig 图片下载代理配置
type DownloadConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	MaxBytes  int64         `mapstructure:"max_bytes"` // 单张图片的最大字节数，0 表示使用默认值
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	if c.AI.BaseURL == "" {
		return errors.New("ai.base_url is required")
	}
	if u, err := url.Parse(c.AI.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("ai.base_url must be an absolute http(s) URL")
	}
	if c.AI.AnalysisModel == "" || c.AI.ImageModel == "" {
		return errors.New("ai.analysis_model and ai.image_model are required")
	}
	if c.AI.Options.Temperature <= 0 {
		return errors.New("ai.options.temperature must be greater than 0")
	}
	if c.AI.Options.MaxTokens <= 0 {
		return errors.New("ai.options.max_tokens must be greater than 0")
	}

	if c.Illustration.PlaceholderURL == "" {
		return errors.New("illustration.placeholder_url is required")
	}

	if c.Download.MaxBytes < 0 {
		return errors.New("download.max_bytes must not be negative")
	}

	return nil
}

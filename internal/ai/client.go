package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"storybook/internal/config"
	"storybook/internal/pkg/ctxutil"
	"storybook/internal/pkg/metrics"
)

// ErrRequestFailed AI 请求失败（网络错误、非 2xx 状态码、响应 JSON 非法）
// 具体状态码与响应体只记录日志，不向调用方暴露
var ErrRequestFailed = errors.New("AI request failed")

// ErrInvalidMessage 消息角色或内容不合法
var ErrInvalidMessage = errors.New("invalid chat message")

const (
	completionsPath = "/chat/completions"
	maxLoggedBody   = 512
)

// Message 对话消息
type Message struct {
	Role    string
	Content string
}

// SystemMessage 构造 system 消息
func SystemMessage(content string) Message {
	return Message{Role: openai.ChatMessageRoleSystem, Content: content}
}

// UserMessage 构造 user 消息
func UserMessage(content string) Message {
	return Message{Role: openai.ChatMessageRoleUser, Content: content}
}

var allowedRoles = map[string]bool{
	openai.ChatMessageRoleSystem:    true,
	openai.ChatMessageRoleUser:      true,
	openai.ChatMessageRoleAssistant: true,
}

// Client AI 能力层客户端
// 职责: 向固定端点发送 chat/completions 请求，统一请求头与错误转换
// 文本分析走 go-openai 客户端；图片生成的响应结构不固定，走原始 JSON 请求
// 不做重试、退避与限流
type Client struct {
	cfg        *config.AIConfig
	endpoint   string
	httpClient *http.Client
	chat       *openai.Client
}

// NewClient 创建 AI 客户端
// httpClient 为空时按 cfg.Timeout 创建默认客户端
func NewClient(cfg *config.AIConfig, httpClient *http.Client) (*Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("ai base url is required")
	}
	if cfg.APIKey == "" {
		log.Warn().Msg("AI API key not configured, requests are sent without Authorization header")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	// CustomerId 由 transport 统一注入，两条请求路径共用
	wrapped := *httpClient
	wrapped.Transport = &headerTransport{
		base:   httpClient.Transport,
		header: customerHeader(cfg.CustomerID),
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	openaiCfg := openai.DefaultConfig(cfg.APIKey)
	openaiCfg.BaseURL = baseURL
	openaiCfg.HTTPClient = &wrapped

	return &Client{
		cfg:        cfg,
		endpoint:   baseURL + completionsPath,
		httpClient: &wrapped,
		chat:       openai.NewClientWithConfig(openaiCfg),
	}, nil
}

// Complete 文本补全
// 使用固定的 temperature 与 max_tokens，返回第一个 choice 的文本；无 choice 时返回空字符串
func (c *Client) Complete(ctx context.Context, model string, messages []Message) (string, error) {
	req, err := c.buildRequest(model, messages)
	if err != nil {
		return "", err
	}
	req.MaxTokens = c.cfg.Options.MaxTokens
	req.Temperature = float32(c.cfg.Options.Temperature)

	start := time.Now()
	resp, err := c.chat.CreateChatCompletion(ctx, req)
	observe(model, start, err)
	if err != nil {
		logCompletionError(ctx, model, err)
		return "", ErrRequestFailed
	}

	log.Debug().
		Str("request_id", ctxutil.RequestID(ctx)).
		Str("model", model).
		Int("choices", len(resp.Choices)).
		Msg("AI 文本补全完成")

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteRaw 原始补全（用于图片生成）
// 只发送 model 与 messages，返回解码后的 JSON 对象，由调用方按需探测字段
func (c *Client) CompleteRaw(ctx context.Context, model string, messages []Message) (map[string]any, error) {
	req, err := c.buildRequest(model, messages)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := c.send(ctx, req)
	observe(model, start, err)
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		log.Error().
			Err(err).
			Str("request_id", ctxutil.RequestID(ctx)).
			Str("model", model).
			Str("body", truncate(body)).
			Msg("AI 响应不是 JSON 对象")
		return nil, ErrRequestFailed
	}
	return payload, nil
}

func (c *Client) buildRequest(model string, messages []Message) (openai.ChatCompletionRequest, error) {
	if model == "" {
		return openai.ChatCompletionRequest{}, fmt.Errorf("%w: model is required", ErrInvalidMessage)
	}
	if len(messages) == 0 {
		return openai.ChatCompletionRequest{}, fmt.Errorf("%w: at least one message is required", ErrInvalidMessage)
	}

	wire := make([]openai.ChatCompletionMessage, 0, len(messages))
	for i, m := range messages {
		if !allowedRoles[m.Role] {
			return openai.ChatCompletionRequest{}, fmt.Errorf("%w: message %d has role %q", ErrInvalidMessage, i, m.Role)
		}
		wire = append(wire, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	return openai.ChatCompletionRequest{
		Model:    model,
		Messages: wire,
	}, nil
}

func observe(model string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.AIRequestDuration.WithLabelValues(model, outcome).Observe(time.Since(start).Seconds())
}

// logCompletionError 记录 go-openai 返回的错误，带上状态码与响应体
func logCompletionError(ctx context.Context, model string, err error) {
	event := log.Error().
		Err(err).
		Str("request_id", ctxutil.RequestID(ctx)).
		Str("model", model)

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		event = event.Int("status", apiErr.HTTPStatusCode).Str("api_error", apiErr.Message)
	case errors.As(err, &reqErr):
		event = event.Int("status", reqErr.HTTPStatusCode).Str("body", truncate(reqErr.Body))
	}
	event.Msg("AI 文本补全请求失败")
}

// send 发送原始请求并返回 2xx 响应体
func (c *Client) send(ctx context.Context, payload openai.ChatCompletionRequest) ([]byte, error) {
	logger := log.With().
		Str("request_id", ctxutil.RequestID(ctx)).
		Str("model", payload.Model).
		Logger()

	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error().Err(err).Msg("AI 请求序列化失败")
		return nil, ErrRequestFailed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		logger.Error().Err(err).Msg("AI 请求构建失败")
		return nil, ErrRequestFailed
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("AI 请求发送失败")
		return nil, ErrRequestFailed
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error().Err(err).Int("status", resp.StatusCode).Msg("AI 响应读取失败")
		return nil, ErrRequestFailed
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error().
			Int("status", resp.StatusCode).
			Str("body", truncate(body)).
			Msg("AI 请求返回非 2xx 状态码")
		return nil, ErrRequestFailed
	}

	logger.Debug().Int("status", resp.StatusCode).Int("body_size", len(body)).Msg("AI 请求完成")
	return body, nil
}

func truncate(body []byte) string {
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "..."
	}
	return string(body)
}

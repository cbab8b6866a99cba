package story

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"storybook/internal/model/story"
	"storybook/internal/pkg/ctxutil"
	"storybook/internal/pkg/metrics"
	"storybook/internal/pkg/storytools"
)

const (
	defaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultContentType = "image/jpeg"
	imageAccept        = "image/webp,image/apng,image/*,*/*;q=0.8"

	defaultMaxImageBytes int64 = 20 << 20
)

// DownloadImage 以浏览器身份抓取远程图片
// 不跟踪图片来源，也不做缓存；每次调用都直接请求源站
func (s *storyService) DownloadImage(ctx context.Context, imageURL string) (*story.Download, error) {
	dl, err := s.fetchImage(ctx, imageURL)
	metrics.ImageDownloads.WithLabelValues(downloadResult(err)).Inc()
	return dl, err
}

func (s *storyService) fetchImage(ctx context.Context, imageURL string) (*story.Download, error) {
	imageURL = strings.TrimSpace(imageURL)
	if !storytools.IsHTTPURL(imageURL) {
		return nil, ErrInvalidImageURL
	}
	if u, err := url.Parse(imageURL); err != nil || u.Host == "" {
		return nil, ErrInvalidImageURL
	}

	logger := log.With().
		Str("request_id", ctxutil.RequestID(ctx)).
		Str("image_url", imageURL).
		Logger()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", imageAccept)
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("图片下载请求失败")
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn().Int("status", resp.StatusCode).Msg("图片源站返回非 2xx 状态码")
		return nil, &UpstreamStatusError{StatusCode: resp.StatusCode}
	}

	// 多读 1 字节用于判断是否超限
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	if int64(len(data)) > s.maxImageBytes {
		logger.Warn().Int64("max_bytes", s.maxImageBytes).Msg("图片超过大小上限")
		return nil, ErrImageTooLarge
	}
	if len(data) == 0 {
		logger.Warn().Msg("图片源站返回空内容")
		return nil, ErrEmptyImage
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}

	logger.Info().
		Int("size", len(data)).
		Str("content_type", contentType).
		Msg("图片下载完成")

	return &story.Download{
		Data:        data,
		ContentType: contentType,
		Extension:   extensionFor(contentType),
	}, nil
}

func downloadResult(err error) string {
	var statusErr *UpstreamStatusError
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, ErrInvalidImageURL):
		return metrics.ResultInvalidURL
	case errors.Is(err, ErrEmptyImage):
		return metrics.ResultEmpty
	case errors.Is(err, ErrImageTooLarge):
		return metrics.ResultTooLarge
	case errors.As(err, &statusErr):
		return metrics.ResultUpstreamStatus
	default:
		return metrics.ResultError
	}
}

// extensionFor 根据 Content-Type 推断文件扩展名，未知类型按 jpg 处理
func extensionFor(contentType string) string {
	contentType = strings.ToLower(contentType)
	switch {
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "webp"):
		return "webp"
	case strings.Contains(contentType, "gif"):
		return "gif"
	default:
		return "jpg"
	}
}

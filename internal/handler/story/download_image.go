package story

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	storyservice "storybook/internal/service/story"
)

// DefaultDownloadFilename 未指定文件名时使用的下载文件名（不含扩展名）
const DefaultDownloadFilename = "story-image"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DownloadImageRequest 图片下载请求
type DownloadImageRequest struct {
	ImageURL string `json:"imageUrl" binding:"required"` // 图片地址（必填，http/https）
	Filename string `json:"filename"`                    // 下载文件名（可选，不含扩展名）
}

// DownloadImage 代理下载图片
// @Summary      代理下载图片
// @Description  服务端抓取远程图片并以附件形式返回，避免浏览器跨域限制
// @Tags         图片
// @Accept       json
// @Produce      octet-stream
// @Param        request  body      DownloadImageRequest  true  "图片地址与文件名"
// @Success      200      {file}    binary                "图片内容"
// @Failure      400      {object}  ErrorResponse         "地址不合法或图片为空"
// @Failure      500      {object}  ErrorResponse         "服务器内部错误"
// @Failure      502      {object}  ErrorResponse         "源站图片超过大小上限"
// @Router       /api/v1/images/download [post]
func (h *Handler) DownloadImage(c *gin.Context) {
	var req DownloadImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    CodeInvalidImageURL,
			Message: "Valid image URL is required",
			Detail:  err.Error(),
		})
		return
	}

	ctx, cancel := requestContext(c, h.downloadTimeout)
	defer cancel()

	dl, err := h.storyService.DownloadImage(ctx, req.ImageURL)
	if err != nil {
		var statusErr *storyservice.UpstreamStatusError
		switch {
		case errors.Is(err, storyservice.ErrInvalidImageURL):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    CodeInvalidImageURL,
				Message: "Valid image URL is required",
			})
		case errors.Is(err, storyservice.ErrEmptyImage):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    CodeEmptyImage,
				Message: "Received empty image file",
			})
		case errors.Is(err, storyservice.ErrImageTooLarge):
			c.JSON(http.StatusBadGateway, ErrorResponse{
				Code:    CodeImageTooLarge,
				Message: "Image exceeds the download size limit",
			})
		case errors.As(err, &statusErr):
			c.JSON(upstreamStatus(statusErr.StatusCode), ErrorResponse{
				Code:    CodeUpstreamStatus,
				Message: fmt.Sprintf("Failed to fetch image: %d", statusErr.StatusCode),
			})
		default:
			log.Error().Err(err).Str("image_url", req.ImageURL).Msg("图片下载失败")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Code:    CodeDownloadFailed,
				Message: "Failed to download image",
				Detail:  err.Error(),
			})
		}
		return
	}

	filename := sanitizeFilename(req.Filename) + "." + dl.Extension
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Length", strconv.Itoa(len(dl.Data)))
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, dl.ContentType, dl.Data)
}

// sanitizeFilename 只保留安全字符，避免破坏 Content-Disposition 头
func sanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(name), "-")
	name = strings.Trim(name, ".-")
	if name == "" {
		return DefaultDownloadFilename
	}
	return name
}

// upstreamStatus 源站的 4xx/5xx 原样透传，其余非 2xx 统一为 502
func upstreamStatus(code int) int {
	if code >= 400 && code <= 599 {
		return code
	}
	return http.StatusBadGateway
}

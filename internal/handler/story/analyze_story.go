package story

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"storybook/internal/model/story"
	storyservice "storybook/internal/service/story"
)

// MinStoryLength 故事去除首尾空白后的最少字符数
const MinStoryLength = 10

// AnalyzeStoryRequest 故事分析请求
type AnalyzeStoryRequest struct {
	Story string `json:"story" binding:"required"` // 故事原文（必填，至少 10 个字符）
}

// AnalyzeStoryResponse 故事分析响应
type AnalyzeStoryResponse struct {
	Code         int           `json:"code"`         // 0 表示成功
	Message      string        `json:"message"`      // 响应消息
	Scenes       []story.Scene `json:"scenes"`       // 场景列表，按 order 升序
	Count        int           `json:"count"`        // 场景数量
	UsedFallback bool          `json:"usedFallback"` // 是否使用了启发式兜底场景
}

// AnalyzeStory 故事分析
// @Summary      分析故事并拆分场景
// @Description  调用文本模型将故事拆分为 2~5 个适合插图的场景；模型不可用或返回内容不合法时使用启发式兜底场景，不会因为上游失败而报错
// @Tags         故事
// @Accept       json
// @Produce      json
// @Param        request  body      AnalyzeStoryRequest   true  "故事内容"
// @Success      200      {object}  AnalyzeStoryResponse  "成功响应"
// @Failure      400      {object}  ErrorResponse         "故事缺失或过短"
// @Failure      500      {object}  ErrorResponse         "服务器内部错误"
// @Router       /api/v1/stories/analyze [post]
func (h *Handler) AnalyzeStory(c *gin.Context) {
	var req AnalyzeStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    CodeInvalidStory,
			Message: "Please provide a story with at least 10 characters.",
			Detail:  err.Error(),
		})
		return
	}

	storyText := strings.TrimSpace(req.Story)
	if utf8.RuneCountInString(storyText) < MinStoryLength {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    CodeInvalidStory,
			Message: "Please provide a story with at least 10 characters.",
		})
		return
	}

	ctx, cancel := requestContext(c, h.analyzeTimeout)
	defer cancel()

	analysis, err := h.storyService.AnalyzeStory(ctx, storyText)
	if err != nil {
		if errors.Is(err, storyservice.ErrEmptyStory) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    CodeInvalidStory,
				Message: "Please provide a story with at least 10 characters.",
			})
			return
		}

		log.Error().Err(err).Msg("故事分析失败")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    CodeAnalyzeFailed,
			Message: "Failed to analyze story. Please try again.",
			Detail:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, AnalyzeStoryResponse{
		Code:         0,
		Message:      fmt.Sprintf("Found %d scenes in your story", len(analysis.Scenes)),
		Scenes:       analysis.Scenes,
		Count:        len(analysis.Scenes),
		UsedFallback: analysis.UsedFallback,
	})
}

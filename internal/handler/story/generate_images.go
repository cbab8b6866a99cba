package story

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"storybook/internal/model/story"
	storyservice "storybook/internal/service/story"
)

// GenerateImagesRequest 生成插图请求
type GenerateImagesRequest struct {
	Scenes []story.Scene `json:"scenes" binding:"required,min=1"` // 场景列表（必填，非空）
}

// GenerateImagesResponse 生成插图响应
type GenerateImagesResponse struct {
	Code    int                 `json:"code"`    // 0 表示成功
	Message string              `json:"message"` // 响应消息
	Images  []story.ImageResult `json:"images"`  // 插图列表，与场景一一对应，按 order 升序
	Count   int                 `json:"count"`   // 插图数量
}

// GenerateImages 为场景生成插图
// @Summary      生成场景插图
// @Description  为每个场景并发调用图片模型生成儿童插图；单个场景失败时返回占位图，不会中断整批请求
// @Tags         故事
// @Accept       json
// @Produce      json
// @Param        request  body      GenerateImagesRequest   true  "场景列表"
// @Success      200      {object}  GenerateImagesResponse  "成功响应"
// @Failure      400      {object}  ErrorResponse           "场景缺失或为空"
// @Failure      500      {object}  ErrorResponse           "服务器内部错误"
// @Router       /api/v1/stories/images [post]
func (h *Handler) GenerateImages(c *gin.Context) {
	var req GenerateImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    CodeInvalidScenes,
			Message: "No scenes provided for image generation.",
			Detail:  err.Error(),
		})
		return
	}

	ctx, cancel := requestContext(c, h.generateTimeout)
	defer cancel()

	images, err := h.storyService.GenerateImages(ctx, req.Scenes)
	if err != nil {
		if errors.Is(err, storyservice.ErrNoScenes) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    CodeInvalidScenes,
				Message: "No scenes provided for image generation.",
			})
			return
		}

		log.Error().Err(err).Int("scene_count", len(req.Scenes)).Msg("场景插图生成失败")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    CodeGenerateFailed,
			Message: "Failed to generate images for your story. Please try again.",
			Detail:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, GenerateImagesResponse{
		Code:    0,
		Message: fmt.Sprintf("Generated %d images for your story", len(images)),
		Images:  images,
		Count:   len(images),
	})
}

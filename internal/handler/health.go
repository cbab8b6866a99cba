package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storybook/internal/config"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	cfg *config.AIConfig
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(cfg *config.AIConfig) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// Health 健康检查
// @Summary  健康检查
// @Tags     系统
// @Produce  json
// @Success  200  {object}  map[string]interface{}
// @Router   /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready 就绪检查
// 服务无状态、不依赖存储，只报告当前使用的模型；不探测上游 AI 端点
// @Summary  就绪检查
// @Tags     系统
// @Produce  json
// @Success  200  {object}  map[string]interface{}
// @Router   /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ready",
		"analysis_model": h.cfg.AnalysisModel,
		"image_model":    h.cfg.ImageModel,
		"api_key_set":    h.cfg.APIKey != "",
	})
}

package story

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	httputil "storybook/internal/pkg/http"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// 业务错误码
const (
	CodeInvalidStory    = 40001 // 故事缺失或过短
	CodeInvalidScenes   = 40002 // 场景缺失、为空或不是数组
	CodeInvalidImageURL = 40003 // 下载地址缺失或不合法
	CodeEmptyImage      = 40004 // 源站返回空图片
	CodeUpstreamStatus  = 40005 // 源站返回非 2xx

	CodeAnalyzeFailed  = 50001
	CodeGenerateFailed = 50002
	CodeDownloadFailed = 50003
	CodeImageTooLarge  = 50004 // 源站图片超过大小上限
)

// requestContext 为请求上下文加上时间预算
func requestContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

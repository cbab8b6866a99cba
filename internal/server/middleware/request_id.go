package middleware

import (
	"github.com/gin-gonic/gin"

	"storybook/internal/pkg/ctxutil"
	"storybook/internal/pkg/id"
)

// RequestIDHeader 请求ID的请求头/响应头名称
const RequestIDHeader = "X-Request-ID"

// RequestID 请求ID中间件
// 沿用客户端传入的合法 X-Request-ID，否则生成新的；写入 gin 上下文、请求 context 与响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := id.RequestID(c.GetHeader(RequestIDHeader))

		c.Set("request_id", requestID)
		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), requestID))
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

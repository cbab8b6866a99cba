package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS 跨域中间件
// 页面与 API 可能不同源；下载接口需要暴露 Content-Disposition 给前端读取文件名
func CORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	return cors.New(corsConfig)
}

package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	ginprometheus "github.com/zsais/go-gin-prometheus"

	"storybook/internal/ai"
	"storybook/internal/config"
	"storybook/internal/handler"
	storyHandler "storybook/internal/handler/story"
	"storybook/internal/server/middleware"
	storyService "storybook/internal/service/story"
)

// Server HTTP 服务器
type Server struct {
	cfg          *config.Config
	engine       *gin.Engine
	storyService storyService.StoryService
}

// New 创建服务器实例
func New(cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建 Gin 引擎
	engine := gin.New()

	// 初始化 AI 客户端（文本分析与图片生成共用）
	aiClient, err := ai.NewClient(&cfg.AI, nil)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("base_url", cfg.AI.BaseURL).
		Str("analysis_model", cfg.AI.AnalysisModel).
		Str("image_model", cfg.AI.ImageModel).
		Msg("initialized AI client")

	srv := &Server{
		cfg:          cfg,
		engine:       engine,
		storyService: storyService.NewStoryService(cfg, aiClient, nil),
	}

	// 设置路由
	srv.setupRoutes()

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// Prometheus：请求指标 + /metrics，URL 标签使用路由模板避免基数膨胀
	p := ginprometheus.NewPrometheus("storybook")
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		if route := c.FullPath(); route != "" {
			return route
		}
		return "unmatched"
	}
	p.Use(s.engine)

	// 健康检查
	healthHandler := handler.NewHealthHandler(&s.cfg.AI)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1
	v1 := s.engine.Group("/api/v1")
	{
		storyHdl := storyHandler.NewHandler(s.storyService, s.cfg)

		// 故事分析与插图生成
		v1.POST("/stories/analyze", storyHdl.AnalyzeStory)
		v1.POST("/stories/images", storyHdl.GenerateImages)

		// 图片下载代理
		v1.POST("/images/download", storyHdl.DownloadImage)
	}
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

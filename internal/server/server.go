package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"productcatalog/internal/config"
	"productcatalog/internal/repository"
	"productcatalog/internal/server/handlers"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server HTTP 服务器
type Server struct {
	config     *config.ServerConfig
	router     *gin.Engine
	logger     *zap.Logger
	httpServer *http.Server
}

// NewServer 创建新的 HTTP 服务器
// 产品仓库通过参数注入，处理器不访问任何全局数据库句柄
func NewServer(cfg *config.ServerConfig, repo *repository.ProductRepository, logger *zap.Logger) *Server {
	// 设置 gin 模式
	gin.SetMode(cfg.Mode)

	// 创建 gin 引擎
	router := gin.New()

	// 添加中间件
	router.Use(ginLogger(logger))
	router.Use(gin.CustomRecovery(recoveryHandler(logger)))

	// 创建服务器实例
	server := &Server{
		config: cfg,
		router: router,
		logger: logger,
	}

	// 设置路由
	productHandler := handlers.NewProductHandler(repo, logger)
	routerManager := NewRouter(router, logger, productHandler)
	routerManager.SetupRoutes()

	// 创建 HTTP 服务器
	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.String("host", s.config.Host),
		zap.Int("port", s.config.Port),
		zap.String("mode", s.config.Mode),
	)

	// 在 goroutine 中启动服务器
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	return nil
}

// Stop 停止服务器
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down HTTP server", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router 获取底层的 gin 引擎（用于测试）
func (s *Server) Router() *gin.Engine {
	return s.router
}

// ginLogger 自定义 gin 日志中间件
func ginLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// 处理请求
		c.Next()

		// 记录日志
		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		if raw != "" {
			path = path + "?" + raw
		}

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", statusCode),
			zap.String("ip", clientIP),
			zap.Duration("latency", latency),
			zap.String("error", errorMessage),
		)
	}
}

// recoveryHandler 将未处理的 panic 转换为 500 响应
func recoveryHandler(logger *zap.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered in HTTP handler",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "server error",
			"message": fmt.Sprint(recovered),
		})
	}
}

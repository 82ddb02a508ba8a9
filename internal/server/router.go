package server

import (
	"net/http"

	"productcatalog/internal/server/handlers"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Router 路由管理器
type Router struct {
	router         *gin.Engine
	logger         *zap.Logger
	productHandler *handlers.ProductHandler
}

// NewRouter 创建路由管理器
func NewRouter(router *gin.Engine, logger *zap.Logger, productHandler *handlers.ProductHandler) *Router {
	return &Router{
		router:         router,
		logger:         logger,
		productHandler: productHandler,
	}
}

// SetupRoutes 设置所有路由
func (r *Router) SetupRoutes() {
	// 服务入口，列出可用端点
	r.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Product Catalog API",
			"endpoints": gin.H{
				"products": "/products",
				"stats":    "/products/stats",
			},
		})
	})

	products := r.router.Group("/products")
	{
		products.GET("", r.productHandler.List)
		products.GET("/stats", r.productHandler.Stats)
	}

	// 未匹配的路由返回 404
	r.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

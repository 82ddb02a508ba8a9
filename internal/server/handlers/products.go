package handlers

import (
	"net/http"

	"productcatalog/internal/model"
	"productcatalog/internal/query"
	"productcatalog/internal/repository"
	"productcatalog/internal/stats"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProductHandler 产品路由处理器
type ProductHandler struct {
	repo   *repository.ProductRepository
	logger *zap.Logger
}

// NewProductHandler 创建产品路由处理器
func NewProductHandler(repo *repository.ProductRepository, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		repo:   repo,
		logger: logger,
	}
}

// Filters 响应中回显的过滤参数，未提供的参数为 null
type Filters struct {
	Category *string `json:"category"`
	Search   *string `json:"search"`
	Sort     *string `json:"sort"`
}

// ListResponse 列表响应
type ListResponse struct {
	Success    bool             `json:"success"`
	Data       []model.Product  `json:"data"`
	Pagination query.Pagination `json:"pagination"`
	Filters    Filters          `json:"filters"`
}

// StatsResponse 统计响应
type StatsResponse struct {
	Success    bool              `json:"success"`
	Statistics *stats.Statistics `json:"statistics"`
}

// ErrorResponse 错误响应，message 透传底层错误信息
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// List 处理 GET /products
// 分页、过滤、搜索、排序参数非法时静默规范化为默认值，不返回错误
func (h *ProductHandler) List(c *gin.Context) {
	params := query.Params{
		Page:     c.Query("page"),
		Limit:    c.Query("limit"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
	}

	result, err := h.repo.List(c.Request.Context(), params)
	if err != nil {
		h.logger.Error("GET /products failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Error:   "failed to retrieve products",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Success:    true,
		Data:       result.Products,
		Pagination: result.Pagination,
		Filters: Filters{
			Category: nullable(params.Category),
			Search:   nullable(params.Search),
			Sort:     nullable(params.Sort),
		},
	})
}

// Stats 处理 GET /products/stats
func (h *ProductHandler) Stats(c *gin.Context) {
	statistics, err := h.repo.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("GET /products/stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Error:   "failed to compute statistics",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Success:    true,
		Statistics: statistics,
	})
}

// nullable 空字符串序列化为 null
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

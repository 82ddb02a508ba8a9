package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"productcatalog/internal/model"

	"go.uber.org/zap"
)

// DefaultBaseURL 外部产品数据源的默认地址
const DefaultBaseURL = "https://dummyjson.com"

// Client 外部产品数据源客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config 客户端配置
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewClient 创建新的数据源客户端
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: cfg.Logger,
	}
}

// productsResponse 数据源 /products 响应结构
type productsResponse struct {
	Products []model.Product `json:"products"`
	Total    int             `json:"total"`
	Skip     int             `json:"skip"`
	Limit    int             `json:"limit"`
}

// FetchProducts 拉取产品列表
// limit 为单次拉取的产品数量上限
func (c *Client) FetchProducts(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 100
	}

	// 构建请求 URL
	fullURL, err := url.JoinPath(c.baseURL, "products")
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	parsedURL, err := url.Parse(fullURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	queryParams := parsedURL.Query()
	queryParams.Set("limit", strconv.Itoa(limit))
	parsedURL.RawQuery = queryParams.Encode()

	if c.logger != nil {
		c.logger.Info("fetching products from source",
			zap.String("url", parsedURL.String()),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("source returned status %d: %s", resp.StatusCode, string(body))
	}

	var response productsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode products response: %w", err)
	}

	if c.logger != nil {
		c.logger.Info("fetched products from source",
			zap.Int("count", len(response.Products)),
			zap.Int("total", response.Total),
		)
	}

	return response.Products, nil
}

package query

import (
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// 分页默认值和边界
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MinLimit     = 1
	MaxLimit     = 100
)

// Params 列表查询参数（原始字符串，来自 HTTP query）
type Params struct {
	Page     string
	Limit    string
	Category string
	Search   string
	Sort     string
}

// ParsePagination 解析分页参数并限制范围
// 解析失败（缺失或非数字）时回退到默认值，然后再做范围限制：
// page 最小为 1，limit 限制在 [1,100]
func ParsePagination(pageRaw, limitRaw string) (page, limit int) {
	page = DefaultPage
	if n, err := strconv.Atoi(pageRaw); err == nil {
		page = n
	}
	if page < 1 {
		page = 1
	}

	limit = DefaultLimit
	if n, err := strconv.Atoi(limitRaw); err == nil {
		limit = n
	}
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return page, limit
}

// Skip 计算跳过的文档数
// 不设上限，请求超出末尾的页返回空结果而不是错误
func Skip(page, limit int) int64 {
	return int64(page-1) * int64(limit)
}

// Filter 构建查询过滤条件
// category 为精确匹配；search 为对 title 或 description 的
// 不区分大小写的子串匹配。search 输入经过 regexp.QuoteMeta 转义，
// 只做字面子串搜索，不允许注入正则表达式
func Filter(category, search string) bson.M {
	filter := bson.M{}

	if category != "" {
		filter["category"] = category
	}

	if search != "" {
		pattern := regexp.QuoteMeta(search)
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	return filter
}

// Sort 构建排序条件
// "-field" 表示按 field 降序，"field" 表示升序
// 未指定时按 _id 升序（即插入顺序）
// 只支持单个排序字段，字段名不做存在性校验
func Sort(sort string) bson.D {
	if sort == "" {
		return bson.D{{Key: "_id", Value: 1}}
	}

	if strings.HasPrefix(sort, "-") {
		return bson.D{{Key: strings.TrimPrefix(sort, "-"), Value: -1}}
	}

	return bson.D{{Key: sort, Value: 1}}
}

// Pagination 分页元数据
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Limit       int   `json:"limit"`
	TotalItems  int64 `json:"totalItems"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPagination 根据总数计算分页元数据
// totalPages 使用向上取整；totalItems 为 0 时 totalPages 为 0
func NewPagination(page, limit int, totalItems int64) Pagination {
	totalPages := int((totalItems + int64(limit) - 1) / int64(limit))

	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		Limit:       limit,
		TotalItems:  totalItems,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

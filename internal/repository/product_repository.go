package repository

import (
	"context"
	"fmt"

	"productcatalog/internal/model"
	"productcatalog/internal/query"
	"productcatalog/internal/stats"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProductRepository 产品目录数据访问层
// 句柄通过构造函数注入，不依赖全局状态，便于测试时替换数据库
type ProductRepository struct {
	db     *mongo.Database
	logger *zap.Logger
}

// NewProductRepository 创建新的 ProductRepository 实例
func NewProductRepository(db *mongo.Database, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger,
	}
}

// collection 获取产品集合
func (r *ProductRepository) collection() *mongo.Collection {
	return r.db.Collection(model.CollectionProducts)
}

// ListResult 列表查询结果
type ListResult struct {
	Products   []model.Product
	Pagination query.Pagination
}

// List 按查询参数返回分页产品列表
// 数据查询和计数查询基于相同的过滤条件并发执行，任一失败则整体失败
func (r *ProductRepository) List(ctx context.Context, params query.Params) (*ListResult, error) {
	page, limit := query.ParsePagination(params.Page, params.Limit)
	filter := query.Filter(params.Category, params.Search)
	sort := query.Sort(params.Sort)
	skip := query.Skip(page, limit)

	products := make([]model.Product, 0, limit)
	var totalCount int64

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		opts := options.Find().
			SetSort(sort).
			SetSkip(skip).
			SetLimit(int64(limit))

		cursor, err := r.collection().Find(gctx, filter, opts)
		if err != nil {
			return fmt.Errorf("failed to query products: %w", err)
		}
		defer cursor.Close(gctx)

		if err := cursor.All(gctx, &products); err != nil {
			return fmt.Errorf("failed to decode products: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		count, err := r.collection().CountDocuments(gctx, filter)
		if err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		totalCount = count
		return nil
	})

	if err := g.Wait(); err != nil {
		if r.logger != nil {
			r.logger.Error("failed to list products",
				zap.String("category", params.Category),
				zap.String("search", params.Search),
				zap.Error(err),
			)
		}
		return nil, err
	}

	if r.logger != nil {
		r.logger.Debug("listed products",
			zap.Int("page", page),
			zap.Int("limit", limit),
			zap.Int("returned", len(products)),
			zap.Int64("total", totalCount),
		)
	}

	return &ListResult{
		Products:   products,
		Pagination: query.NewPagination(page, limit, totalCount),
	}, nil
}

// Stats 执行四个固定形状的统计管道并合并结果
// 四个管道互相独立，并发执行；任一失败则整个统计请求失败，不返回部分结果
func (r *ProductRepository) Stats(ctx context.Context) (*stats.Statistics, error) {
	byCategory := make([]stats.CategoryStats, 0)
	topRated := make([]stats.TopProduct, 0)
	byBrand := make([]stats.BrandStats, 0)
	var global []stats.GlobalStats

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.aggregate(gctx, stats.ByCategoryPipeline(), &byCategory)
	})
	g.Go(func() error {
		return r.aggregate(gctx, stats.TopRatedExpensivePipeline(), &topRated)
	})
	g.Go(func() error {
		return r.aggregate(gctx, stats.ByBrandPipeline(), &byBrand)
	})
	g.Go(func() error {
		return r.aggregate(gctx, stats.GlobalPipeline(), &global)
	})

	if err := g.Wait(); err != nil {
		if r.logger != nil {
			r.logger.Error("failed to compute statistics", zap.Error(err))
		}
		return nil, err
	}

	result := &stats.Statistics{
		ByCategory:        byCategory,
		TopRatedExpensive: topRated,
		ByBrand:           byBrand,
	}

	// 集合为空时全局汇总没有结果行，返回 {} 而不是 null
	if len(global) > 0 {
		result.Global = global[0]
	} else {
		result.Global = struct{}{}
	}

	return result, nil
}

// aggregate 执行聚合管道并解码结果
func (r *ProductRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := r.collection().Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("failed to run aggregation: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode aggregation results: %w", err)
	}
	return nil
}

// EnsureIndexes 创建产品集合的索引
// 分类、价格、品牌的单字段索引支撑过滤和排序；
// title+description 文本索引支撑搜索；rating 降序索引支撑统计管道
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "rating", Value: -1}}},
		{Keys: bson.D{{Key: "brand", Value: 1}}},
	}

	_, err := r.collection().Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}

	if r.logger != nil {
		r.logger.Info("ensured product collection indexes")
	}

	return nil
}

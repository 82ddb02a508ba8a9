package seeder

import (
	"context"
	"fmt"

	"productcatalog/internal/model"
	"productcatalog/internal/repository"
	"productcatalog/internal/source"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Seeder 产品目录重建器
// 执行破坏性的全量替换：拉取数据源快照，删除旧集合，插入新数据并重建索引
// 完成后集合内容与数据源当时返回的产品集完全一致，不保留历史
type Seeder struct {
	client *source.Client
	db     *mongo.Database
	repo   *repository.ProductRepository
	logger *zap.Logger
	limit  int
}

// Config 重建器配置
type Config struct {
	Client *source.Client
	DB     *mongo.Database
	Logger *zap.Logger
	Limit  int // 从数据源拉取的产品数量
}

// NewSeeder 创建产品目录重建器
func NewSeeder(cfg Config) *Seeder {
	limit := cfg.Limit
	if limit <= 0 {
		limit = 100
	}

	return &Seeder{
		client: cfg.Client,
		db:     cfg.DB,
		repo:   repository.NewProductRepository(cfg.DB, cfg.Logger),
		logger: cfg.Logger,
		limit:  limit,
	}
}

// Run 执行一次完整的重建
// 只应作为显式的维护操作执行，绝不能从请求处理路径调用
func (s *Seeder) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("starting catalog seeding", zap.Int("limit", s.limit))
	}

	// 1. 拉取数据源快照
	products, err := s.client.FetchProducts(ctx, s.limit)
	if err != nil {
		return fmt.Errorf("failed to fetch products from source: %w", err)
	}

	if len(products) == 0 {
		return fmt.Errorf("source returned no products, aborting seed")
	}

	collection := s.db.Collection(model.CollectionProducts)

	// 2. 删除旧集合（首次执行时集合不存在，忽略错误）
	if err := collection.Drop(ctx); err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to drop products collection", zap.Error(err))
		}
	}

	// 3. 插入新产品
	docs := make([]interface{}, len(products))
	for i := range products {
		docs[i] = products[i]
	}

	insertResult, err := collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to insert products: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("inserted products",
			zap.Int("count", len(insertResult.InsertedIDs)),
		)
	}

	// 4. 重建索引
	if err := s.repo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	// 5. 记录汇总信息
	if err := s.logSummary(ctx, collection); err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to compute seed summary", zap.Error(err))
		}
	}

	if s.logger != nil {
		s.logger.Info("catalog seeding completed")
	}

	return nil
}

// seedSummary 重建后的汇总信息
type seedSummary struct {
	TotalProducts int      `bson:"totalProducts"`
	AvgPrice      float64  `bson:"avgPrice"`
	Categories    []string `bson:"categories"`
}

// logSummary 统计重建后的集合并记录日志
func (s *Seeder) logSummary(ctx context.Context, collection *mongo.Collection) error {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"totalProducts": bson.M{"$sum": 1},
			"avgPrice":      bson.M{"$avg": "$price"},
			"categories":    bson.M{"$addToSet": "$category"},
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("failed to run summary aggregation: %w", err)
	}
	defer cursor.Close(ctx)

	var summaries []seedSummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return fmt.Errorf("failed to decode summary: %w", err)
	}

	if len(summaries) > 0 && s.logger != nil {
		s.logger.Info("seed summary",
			zap.Int("total_products", summaries[0].TotalProducts),
			zap.Float64("avg_price", summaries[0].AvgPrice),
			zap.Int("category_count", len(summaries[0].Categories)),
		)
	}

	return nil
}

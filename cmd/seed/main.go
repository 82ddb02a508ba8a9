package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"productcatalog/internal/config"
	"productcatalog/internal/database"
	"productcatalog/internal/logger"
	"productcatalog/internal/seeder"
	"productcatalog/internal/source"

	"go.uber.org/zap"
)

// 一次性重建工具：拉取数据源快照，全量替换产品集合并重建索引
// 这是显式的维护操作，与 API 服务分开部署执行
func main() {
	// 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	zapLogger, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	// 初始化数据库连接
	dbs, err := database.New(database.ConfigFromAppConfig(cfg, zapLogger))
	if err != nil {
		zapLogger.Fatal("failed to initialize databases", zap.Error(err))
	}
	defer func() {
		if err := dbs.Close(); err != nil {
			zapLogger.Error("error closing databases", zap.Error(err))
		}
	}()

	if dbs.MongoDB == nil {
		zapLogger.Fatal("MongoDB must be enabled for seeding")
	}

	sourceClient := source.NewClient(source.Config{
		BaseURL: cfg.Source.BaseURL,
		Timeout: cfg.Source.TimeoutDuration,
		Logger:  zapLogger,
	})

	catalogSeeder := seeder.NewSeeder(seeder.Config{
		Client: sourceClient,
		DB:     dbs.MongoDB,
		Logger: zapLogger,
		Limit:  cfg.Source.Limit,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := catalogSeeder.Run(ctx); err != nil {
		zapLogger.Fatal("seeding failed", zap.Error(err))
	}
}

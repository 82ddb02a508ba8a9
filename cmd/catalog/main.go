package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"productcatalog/internal/config"
	"productcatalog/internal/database"
	"productcatalog/internal/logger"
	"productcatalog/internal/repository"
	"productcatalog/internal/scheduler"
	"productcatalog/internal/seeder"
	"productcatalog/internal/server"
	"productcatalog/internal/source"
	"productcatalog/internal/task"

	"go.uber.org/zap"
)

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

	zapLogger.Info("application starting",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
	)

	// 初始化数据库连接
	dbs, err := database.New(database.ConfigFromAppConfig(cfg, zapLogger))
	if err != nil {
		zapLogger.Fatal("failed to initialize databases", zap.Error(err))
	}

	// 设置全局数据库管理器（仅用于运维辅助功能）
	database.SetGlobal(dbs)

	if dbs.MongoDB == nil {
		zapLogger.Fatal("MongoDB must be enabled for the catalog API")
	}

	// 创建产品仓库并注入 HTTP 服务器
	repo := repository.NewProductRepository(dbs.MongoDB, zapLogger)
	srv := server.NewServer(&cfg.Server, repo, zapLogger)

	if err := srv.Start(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}

	// 可选的定时重建任务
	var sched *scheduler.Scheduler
	if cfg.Seed.Enabled {
		sched, err = startSeedScheduler(cfg, dbs, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to start seed scheduler", zap.Error(err))
		}
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	zapLogger.Info("received signal, shutting down...",
		zap.String("signal", sig.String()),
	)

	// 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		zapLogger.Error("error stopping HTTP server", zap.Error(err))
	}

	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			zapLogger.Error("error stopping scheduler", zap.Error(err))
		}
	}

	// 关闭数据库连接
	if err := dbs.Close(); err != nil {
		zapLogger.Error("error closing databases", zap.Error(err))
	}

	zapLogger.Info("application stopped")
}

// startSeedScheduler 注册并启动定时重建任务
func startSeedScheduler(cfg *config.Config, dbs *database.Databases, zapLogger *zap.Logger) (*scheduler.Scheduler, error) {
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

	registry := task.NewRegistry()
	if err := registry.Register(seeder.NewSeedTask(catalogSeeder, cfg.Seed.Schedule, cfg.Seed.Enabled)); err != nil {
		return nil, fmt.Errorf("failed to register seed task: %w", err)
	}

	location, err := cfg.GetLocation()
	if err != nil {
		zapLogger.Warn("failed to load location, using local time", zap.Error(err))
		location = time.Local
	}

	defaultTimeout, err := cfg.GetDefaultTimeout()
	if err != nil {
		zapLogger.Warn("failed to parse default timeout, using 30m", zap.Error(err))
		defaultTimeout = 30 * time.Minute
	}

	sched := scheduler.NewScheduler(scheduler.Config{
		Logger:         zapLogger,
		Registry:       registry,
		DefaultTimeout: defaultTimeout,
		Location:       location,
	})

	if err := sched.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	zapLogger.Info("seed scheduler started",
		zap.String("schedule", cfg.Seed.Schedule),
	)

	return sched, nil
}

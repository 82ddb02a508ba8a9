package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"productcatalog/internal/task"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler 维护任务调度器
// 按 cron 表达式触发注册表中启用的任务，每次执行带超时控制
type Scheduler struct {
	cron           *cron.Cron
	registry       *task.Registry
	logger         *zap.Logger
	running        bool
	mu             sync.RWMutex
	ctx            context.Context
	cancel         context.CancelFunc
	entries        map[string]cron.EntryID
	defaultTimeout time.Duration
}

// Config 调度器配置
type Config struct {
	Logger         *zap.Logger
	Registry       *task.Registry
	DefaultTimeout time.Duration
	Location       *time.Location
}

// NewScheduler 创建调度器
func NewScheduler(cfg Config) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	if cfg.Registry == nil {
		cfg.Registry = task.NewRegistry()
	}

	if cfg.DefaultTimeout == 0 {
		cfg.DefaultTimeout = 30 * time.Minute
	}

	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	opts := []cron.Option{
		cron.WithLocation(cfg.Location),
		cron.WithSeconds(), // 支持秒级精度
		cron.WithChain(
			cron.Recover(cron.DefaultLogger),
		),
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:           cron.New(opts...),
		registry:       cfg.Registry,
		logger:         cfg.Logger,
		ctx:            ctx,
		cancel:         cancel,
		entries:        make(map[string]cron.EntryID),
		defaultTimeout: cfg.DefaultTimeout,
	}
}

// Start 注册启用的任务并启动调度
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	tasks := s.registry.Enabled()
	for name, t := range tasks {
		schedule := t.Schedule()
		if schedule == "" {
			s.logger.Error("task schedule is empty, skipping",
				zap.String("task", name),
			)
			continue
		}

		entryID, err := s.cron.AddFunc(schedule, s.wrap(name, t))
		if err != nil {
			s.logger.Error("failed to parse task schedule",
				zap.String("task", name),
				zap.String("schedule", schedule),
				zap.Error(err),
			)
			continue
		}

		s.entries[name] = entryID
		s.logger.Info("task registered",
			zap.String("task", name),
			zap.String("schedule", schedule),
		)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("scheduler started",
		zap.Int("total_tasks", len(s.entries)),
	)

	return nil
}

// Stop 停止调度器，等待正在执行的任务完成或 ctx 超时
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.logger.Info("stopping scheduler...")

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Info("scheduler stopped gracefully")
	case <-ctx.Done():
		s.logger.Warn("context cancelled while stopping scheduler")
		return ctx.Err()
	}

	s.cancel()
	s.running = false

	return nil
}

// wrap 包装任务执行：加超时、记录执行结果
func (s *Scheduler) wrap(name string, t task.Task) func() {
	return func() {
		startTime := time.Now()
		s.logger.Info("task started",
			zap.String("task", name),
			zap.Time("start_time", startTime),
		)

		timeout := t.Timeout()
		if timeout == 0 {
			timeout = s.defaultTimeout
		}

		ctx, cancel := context.WithTimeout(s.ctx, timeout)
		defer cancel()

		err := t.Run(ctx)
		duration := time.Since(startTime)

		fields := []zap.Field{
			zap.String("task", name),
			zap.Duration("duration", duration),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
			s.logger.Error("task completed with error", fields...)
		} else {
			s.logger.Info("task completed successfully", fields...)
		}
	}
}

// IsRunning 检查调度器是否运行中
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

package seeder

import (
	"context"
	"time"

	"productcatalog/internal/task"
)

// SeedTask 定时重建任务
// 将 Seeder 包装为可调度任务，按配置的 cron 表达式定期刷新目录快照
// 默认关闭；重建是破坏性操作，只应在明确需要定期刷新时启用
type SeedTask struct {
	seeder   *Seeder
	schedule string
	enabled  bool
}

// NewSeedTask 创建定时重建任务
func NewSeedTask(seeder *Seeder, schedule string, enabled bool) task.Task {
	return &SeedTask{
		seeder:   seeder,
		schedule: schedule,
		enabled:  enabled,
	}
}

func (t *SeedTask) Name() string {
	return "catalog_seed"
}

func (t *SeedTask) Schedule() string {
	return t.schedule
}

func (t *SeedTask) Run(ctx context.Context) error {
	return t.seeder.Run(ctx)
}

func (t *SeedTask) Timeout() time.Duration {
	return 10 * time.Minute
}

func (t *SeedTask) Enabled() bool {
	return t.enabled
}

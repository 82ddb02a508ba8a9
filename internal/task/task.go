package task

import (
	"context"
	"time"
)

// Task 定义了可被调度器执行的维护任务接口
// 目录服务中的任务都是离线维护操作（如目录重建），不在请求路径上执行
type Task interface {
	// Name 返回任务名称，用于注册和日志记录
	Name() string

	// Schedule 返回 cron 表达式（秒 分 时 日 月 周）
	// 例如 "0 0 3 * * *" 表示每天凌晨三点执行
	Schedule() string

	// Run 执行任务，ctx 控制取消和超时
	Run(ctx context.Context) error

	// Timeout 返回单次执行的超时时间，0 表示使用调度器默认值
	Timeout() time.Duration

	// Enabled 返回任务是否启用，未启用的任务不会被调度
	Enabled() bool
}

// Registry 任务注册表，按名称索引已注册的任务
type Registry struct {
	tasks map[string]Task
}

// NewRegistry 创建空的任务注册表
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]Task),
	}
}

// Register 注册任务，名称重复时返回错误
func (r *Registry) Register(t Task) error {
	name := t.Name()
	if name == "" {
		return ErrEmptyTaskName
	}

	if _, exists := r.tasks[name]; exists {
		return ErrTaskAlreadyRegistered
	}

	r.tasks[name] = t
	return nil
}

// Get 按名称获取任务
func (r *Registry) Get(name string) (Task, bool) {
	t, exists := r.tasks[name]
	return t, exists
}

// Enabled 返回所有启用的任务
func (r *Registry) Enabled() map[string]Task {
	result := make(map[string]Task)
	for name, t := range r.tasks {
		if t.Enabled() {
			result[name] = t
		}
	}
	return result
}

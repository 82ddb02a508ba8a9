package database

import (
	"sync"
)

var (
	globalDBs *Databases
	mu        sync.RWMutex
)

// SetGlobal 设置全局数据库管理器
// 请求处理路径不依赖全局句柄（依赖通过构造函数注入），
// 这里只为运维辅助功能（如 PingAll）保留
func SetGlobal(dbs *Databases) {
	mu.Lock()
	defer mu.Unlock()
	globalDBs = dbs
}

// GetGlobal 获取全局数据库管理器
func GetGlobal() *Databases {
	mu.RLock()
	defer mu.RUnlock()
	return globalDBs
}

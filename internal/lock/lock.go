package lock

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lvdashuaibi/awardvote/config"
)

// Lock 分布式锁接口，用于多实例之间串行化数据库迁移等一次性任务
type Lock interface {
	// AcquireLock 获取分布式锁
	// 返回值：bool表示是否成功获取锁，error表示获取过程中的错误
	AcquireLock(lockName string, timeout time.Duration) (bool, error)

	// RefreshLock 刷新锁的过期时间
	RefreshLock(lockName string, timeout time.Duration) (bool, error)

	// ReleaseLock 释放分布式锁
	ReleaseLock(lockName string) error

	// ReleaseAllLocks 释放所有持有的锁
	ReleaseAllLocks()

	Close() error
}

// New 按 lock.driver 创建锁实现，driver 为 none 时返回 nil
func New(cfg *config.Config, logger *slog.Logger) (Lock, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Lock.Driver {
	case "etcd":
		return NewETCDLock(cfg.ETCD, logger)
	case "redis":
		return NewRedLock(cfg.Redis, cfg.Lock, logger)
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("未知的锁驱动 %q", cfg.Lock.Driver)
	}
}

// quorum 多数派节点数
func quorum(n int) int {
	return n/2 + 1
}

package lock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/lvdashuaibi/awardvote/config"
)

// 只操作自己持有的锁
var (
	refreshScript = redis.NewScript(`
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("PEXPIRE", KEYS[1], ARGV[2])
		else
			return 0
		end
	`)
	unlockScript = redis.NewScript(`
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`)
)

// RedLock 在多个独立Redis节点上实现Redlock算法
type RedLock struct {
	clients []*redis.Client
	addrs   []string
	retries int
	log     *slog.Logger

	mu    sync.Mutex
	locks map[string]string // key是锁名，value是token值
}

// NewRedLock 创建新的分布式锁客户端
func NewRedLock(cfg config.RedisConfig, lockCfg config.LockConfig, logger *slog.Logger) (*RedLock, error) {
	if len(cfg.LockAddresses) == 0 {
		return nil, fmt.Errorf("redis.lock_addresses 未配置")
	}
	if logger == nil {
		logger = slog.Default()
	}

	dialTimeout := cfg.Timeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	var clients []*redis.Client
	for _, addr := range cfg.LockAddresses {
		client := redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			MaxRetries:   cfg.MaxRetries,
			DialTimeout:  cfg.Timeout,
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		})

		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			for _, c := range clients {
				_ = c.Close()
			}
			return nil, fmt.Errorf("Redis锁节点 %s 连接测试失败: %w", addr, err)
		}

		clients = append(clients, client)
	}

	retries := lockCfg.RetryCount
	if retries <= 0 {
		retries = 1
	}

	return &RedLock{
		clients: clients,
		addrs:   cfg.LockAddresses,
		retries: retries,
		log:     logger,
		locks:   make(map[string]string),
	}, nil
}

// AcquireLock 多数节点加锁成功且剩余有效期大于0时视为获取成功
func (r *RedLock) AcquireLock(lockName string, timeout time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.locks[lockName]; ok {
		return false, fmt.Errorf("锁 %s 已被当前实例持有", lockName)
	}

	token := uuid.NewString()
	for attempt := 0; attempt < r.retries; attempt++ {
		start := time.Now()
		success := 0

		for i, client := range r.clients {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			ok, err := client.SetNX(ctx, lockName, token, timeout).Result()
			cancel()
			if err != nil {
				r.log.Warn("Redis节点获取锁失败", "node", r.addrs[i], "lock", lockName, "err", err)
				continue
			}
			if ok {
				success++
			}
		}

		validity := timeout - time.Since(start)
		if success >= quorum(len(r.clients)) && validity > 0 {
			r.locks[lockName] = token
			r.log.Info("获取Redis锁成功", "lock", lockName, "nodes", success)
			return true, nil
		}

		// 获取失败，释放所有节点上的锁
		r.unlockAll(lockName, token)
		time.Sleep(100 * time.Millisecond)
	}

	return false, nil
}

// RefreshLock 刷新锁的过期时间
func (r *RedLock) RefreshLock(lockName string, timeout time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, exists := r.locks[lockName]
	if !exists {
		return false, fmt.Errorf("锁 %s 不存在或未持有", lockName)
	}

	success := 0
	for i, client := range r.clients {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		n, err := refreshScript.Run(ctx, client, []string{lockName}, token, timeout.Milliseconds()).Int64()
		cancel()
		if err != nil {
			r.log.Warn("Redis节点刷新锁失败", "node", r.addrs[i], "lock", lockName, "err", err)
			continue
		}
		if n == 1 {
			success++
		}
	}

	if success >= quorum(len(r.clients)) {
		return true, nil
	}

	delete(r.locks, lockName)
	return false, nil
}

// ReleaseLock 释放分布式锁
func (r *RedLock) ReleaseLock(lockName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, exists := r.locks[lockName]
	if !exists {
		return fmt.Errorf("锁 %s 不存在或未持有", lockName)
	}

	r.unlockAll(lockName, token)
	delete(r.locks, lockName)
	r.log.Info("释放Redis锁成功", "lock", lockName)
	return nil
}

func (r *RedLock) unlockAll(lockName string, token string) {
	for i, client := range r.clients {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := unlockScript.Run(ctx, client, []string{lockName}, token).Err()
		cancel()
		if err != nil {
			r.log.Warn("Redis节点释放锁失败", "node", r.addrs[i], "lock", lockName, "err", err)
		}
	}
}

// ReleaseAllLocks 释放所有持有的锁
func (r *RedLock) ReleaseAllLocks() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, token := range r.locks {
		r.unlockAll(name, token)
	}
	r.locks = make(map[string]string)
}

// Close 关闭分布式锁客户端
func (r *RedLock) Close() error {
	r.ReleaseAllLocks()

	for i, client := range r.clients {
		if err := client.Close(); err != nil {
			r.log.Warn("关闭Redis客户端失败", "node", r.addrs[i], "err", err)
		}
	}
	return nil
}

// Package migrations 内嵌数据库表结构，并通过 golang-migrate 执行
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lvdashuaibi/awardvote/internal/lock"
)

//go:embed *.sql
var files embed.FS

// LockName 多实例同时启动时只允许一个实例执行迁移
const LockName = "awardvote:migrate:lock"

// New 基于已有连接创建迁移实例，DSN需开启 multiStatements
func New(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(files, ".")
	if err != nil {
		return nil, fmt.Errorf("加载迁移文件失败: %w", err)
	}

	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return nil, fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "mysql", driver)
	if err != nil {
		return nil, fmt.Errorf("创建迁移实例失败: %w", err)
	}
	return m, nil
}

// Up 持有分布式锁时执行全部未执行的迁移，l 为 nil 时不加锁
func Up(db *sql.DB, l lock.Lock, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	return withLock(l, timeout, logger, func() error {
		m, err := New(db)
		if err != nil {
			return err
		}

		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("执行迁移失败: %w", err)
		}

		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("读取迁移版本失败: %w", err)
		}
		logger.Info("数据库迁移完成", "version", version, "dirty", dirty)
		return nil
	})
}

// withLock 获取迁移锁执行 fn，执行期间每隔 timeout/2 续期，结束后释放
func withLock(l lock.Lock, timeout time.Duration, logger *slog.Logger, fn func() error) error {
	if l == nil {
		return fn()
	}

	if err := acquire(l, timeout); err != nil {
		return err
	}
	defer func() {
		if err := l.ReleaseLock(LockName); err != nil {
			logger.Warn("释放迁移锁失败", "err", err)
		}
	}()

	stop := keepRefreshing(l, timeout, logger)
	defer stop()

	return fn()
}

// keepRefreshing 后台续期迁移锁，返回的函数停止续期并等待goroutine退出
func keepRefreshing(l lock.Lock, timeout time.Duration, logger *slog.Logger) func() {
	interval := timeout / 2
	if interval <= 0 {
		interval = time.Second
	}

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				ok, err := l.RefreshLock(LockName, timeout)
				if err != nil {
					logger.Warn("续期迁移锁失败", "err", err)
				} else if !ok {
					logger.Error("迁移锁已失效，其他实例可能同时执行迁移")
				}
			}
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}

// acquire 轮询获取迁移锁直到超时
func acquire(l lock.Lock, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := l.AcquireLock(LockName, timeout)
		if err != nil {
			return fmt.Errorf("获取迁移锁失败: %w", err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("获取迁移锁超时")
		}
		time.Sleep(500 * time.Millisecond)
	}
}

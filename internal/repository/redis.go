package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/lvdashuaibi/awardvote/config"
	"github.com/lvdashuaibi/awardvote/internal/model"
)

const (
	// Redis键前缀
	VoterBallotKey = "award:ballot:voter:"

	defaultBallotTTL = time.Hour
)

// BallotKey 投票人已投状态的缓存键
func BallotKey(voterID string) string {
	return VoterBallotKey + voterID
}

// RedisBallotCache 投票人已投奖项的缓存，只用于展示，不作为是否可投票的依据
type RedisBallotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.DataAddress,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	// 测试连接
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis数据节点连接测试失败: %w", err)
	}
	return client, nil
}

func NewRedisBallotCache(client *redis.Client, ttl time.Duration) *RedisBallotCache {
	if ttl <= 0 {
		ttl = defaultBallotTTL
	}
	return &RedisBallotCache{client: client, ttl: ttl}
}

// GetBallot 从缓存获取投票人已投状态
func (r *RedisBallotCache) GetBallot(ctx context.Context, voterID string) (*model.VoterBallot, bool, error) {
	data, err := r.client.Get(ctx, BallotKey(voterID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // 缓存未命中
		}
		return nil, false, fmt.Errorf("获取投票状态缓存失败: %w", err)
	}

	var ballot model.VoterBallot
	if err := json.Unmarshal(data, &ballot); err != nil {
		return nil, false, fmt.Errorf("解析投票状态缓存失败: %w", err)
	}
	return &ballot, true, nil
}

// SetBallot 设置投票人已投状态缓存
func (r *RedisBallotCache) SetBallot(ctx context.Context, ballot *model.VoterBallot) error {
	data, err := json.Marshal(ballot)
	if err != nil {
		return fmt.Errorf("序列化投票状态失败: %w", err)
	}

	if err := r.client.Set(ctx, BallotKey(ballot.VoterID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("设置投票状态缓存失败: %w", err)
	}
	return nil
}

// DeleteBallot 删除投票人已投状态缓存
func (r *RedisBallotCache) DeleteBallot(ctx context.Context, voterID string) error {
	if err := r.client.Del(ctx, BallotKey(voterID)).Err(); err != nil {
		return fmt.Errorf("删除投票状态缓存失败: %w", err)
	}
	return nil
}

// Close 关闭Redis连接
func (r *RedisBallotCache) Close() error {
	return r.client.Close()
}

// MemoryBallotCache 进程内的投票状态缓存，未部署Redis时使用
type MemoryBallotCache struct {
	mu      sync.Mutex
	ballots map[string]memoryBallot
	ttl     time.Duration
	now     func() time.Time
}

type memoryBallot struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryBallotCache(ttl time.Duration) *MemoryBallotCache {
	if ttl <= 0 {
		ttl = defaultBallotTTL
	}
	return &MemoryBallotCache{ballots: make(map[string]memoryBallot), ttl: ttl, now: time.Now}
}

func (m *MemoryBallotCache) GetBallot(ctx context.Context, voterID string) (*model.VoterBallot, bool, error) {
	m.mu.Lock()
	entry, ok := m.ballots[voterID]
	if ok && m.now().After(entry.expiresAt) {
		delete(m.ballots, voterID)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, false, nil
	}

	var ballot model.VoterBallot
	if err := json.Unmarshal(entry.data, &ballot); err != nil {
		return nil, false, fmt.Errorf("解析投票状态缓存失败: %w", err)
	}
	return &ballot, true, nil
}

func (m *MemoryBallotCache) SetBallot(ctx context.Context, ballot *model.VoterBallot) error {
	// 序列化保存，避免调用方修改缓存中的map
	data, err := json.Marshal(ballot)
	if err != nil {
		return fmt.Errorf("序列化投票状态失败: %w", err)
	}

	m.mu.Lock()
	m.ballots[ballot.VoterID] = memoryBallot{data: data, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryBallotCache) DeleteBallot(ctx context.Context, voterID string) error {
	m.mu.Lock()
	delete(m.ballots, voterID)
	m.mu.Unlock()
	return nil
}

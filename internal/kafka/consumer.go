package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lvdashuaibi/awardvote/config"
	"github.com/lvdashuaibi/awardvote/internal/model"
	"github.com/segmentio/kafka-go"
)

type MessageHandler func(ctx context.Context, event *model.VoteEvent) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer 消费者组模式，多个reader共享GroupID并发消费
type Consumer struct {
	readers []messageReader
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	log     *slog.Logger
	// retryDelay 处理失败后重试前的等待时间
	retryDelay time.Duration
}

func NewConsumer(cfg config.KafkaConfig, logger *slog.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("Kafka broker 未配置")
	}

	numWorkers := cfg.Workers
	if numWorkers <= 0 {
		numWorkers = 1
	}

	readers := make([]messageReader, 0, numWorkers)
	for i := 0; i < numWorkers; i++ {
		readers = append(readers, kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.Brokers,
			Topic:    cfg.Topic,
			GroupID:  cfg.GroupID,
			MinBytes: 1,
			MaxBytes: 10e6, // 10MB
		}))
	}

	c := newConsumer(readers, logger)
	c.log.Info("Kafka消费者已创建", "topic", cfg.Topic, "group_id", cfg.GroupID, "workers", numWorkers)
	return c, nil
}

func newConsumer(readers []messageReader, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		readers:    readers,
		ctx:        ctx,
		cancel:     cancel,
		log:        logger,
		retryDelay: time.Second,
	}
}

// StartConsuming 开始消费消息，每个reader一个goroutine
func (c *Consumer) StartConsuming(handler MessageHandler) {
	for i, reader := range c.readers {
		c.wg.Add(1)
		go func(workerID int, r messageReader) {
			defer c.wg.Done()
			c.consumeMessages(workerID, r, handler)
		}(i, reader)
	}

	c.log.Info("已启动Kafka消费者工作线程", "count", len(c.readers))
}

// consumeMessages 处理成功后才提交offset，处理失败的消息会重试
func (c *Consumer) consumeMessages(workerID int, reader messageReader, handler MessageHandler) {
	log := c.log.With("worker", workerID)
	log.Debug("消费者工作线程已启动")

	for {
		m, err := reader.FetchMessage(c.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || c.ctx.Err() != nil {
				log.Debug("消费者工作线程收到停止信号")
				return
			}
			log.Error("读取消息失败", "err", err)
			if !c.sleep() {
				return
			}
			continue
		}

		event, ok, err := decodeVoteEvent(m)
		if err != nil {
			// 无法解析的消息重试也不会成功，记录后跳过
			log.Error("解析消息失败，跳过", "partition", m.Partition, "offset", m.Offset, "err", err)
		}

		for ok {
			err := handler(c.ctx, event)
			if err == nil {
				break
			}
			log.Error("处理投票事件失败，稍后重试", "vote_id", event.VoteID, "err", err)
			if !c.sleep() {
				return
			}
		}

		if err := reader.CommitMessages(c.ctx, m); err != nil && c.ctx.Err() == nil {
			log.Error("提交offset失败", "partition", m.Partition, "offset", m.Offset, "err", err)
		}
	}
}

// sleep 等待重试间隔，消费者停止时返回 false
func (c *Consumer) sleep() bool {
	select {
	case <-c.ctx.Done():
		return false
	case <-time.After(c.retryDelay):
		return true
	}
}

// Stop 停止消费
func (c *Consumer) Stop() error {
	c.log.Info("正在停止所有Kafka消费者工作线程")
	c.cancel()

	// 等待所有工作线程结束
	c.wg.Wait()

	var errs []error
	for i, reader := range c.readers {
		if err := reader.Close(); err != nil {
			errs = append(errs, fmt.Errorf("关闭消费者 #%d 失败: %w", i, err))
		}
	}

	c.log.Info("所有Kafka消费者工作线程已停止")
	return errors.Join(errs...)
}

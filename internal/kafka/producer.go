package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lvdashuaibi/awardvote/config"
	"github.com/lvdashuaibi/awardvote/internal/model"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer messageWriter
	log    *slog.Logger
}

func NewProducer(cfg config.KafkaConfig, logger *slog.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("Kafka broker 未配置")
	}
	if logger == nil {
		logger = slog.Default()
	}

	writer := newWriter(cfg)

	logger.Info("Kafka生产者已创建", "topic", cfg.Topic, "brokers", cfg.Brokers)
	return &Producer{writer: writer, log: logger}, nil
}

// newWriter 投票事件逐条同步发送，BatchTimeout 缩短到10ms避免每票等待默认的1s攒批
func newWriter(cfg config.KafkaConfig) *kafka.Writer {
	// 使用Hash分区器，基于消息Key进行分区路由
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}
}

// PublishVoteCast 发送投票事件到Kafka
func (p *Producer) PublishVoteCast(ctx context.Context, event *model.VoteEvent) error {
	msg, err := encodeVoteEvent(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("发送投票事件失败: %w", err)
	}
	return nil
}

// Close 关闭Kafka生产者
func (p *Producer) Close() error {
	return p.writer.Close()
}

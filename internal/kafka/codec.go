package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lvdashuaibi/awardvote/internal/model"
	"github.com/segmentio/kafka-go"
)

const eventTypeHeader = "event-type"

// EventVoteCast 投票成功事件类型
const EventVoteCast = "vote.cast"

// encodeVoteEvent 以投票人ID为key，保证同一投票人的事件进入同一分区
func encodeVoteEvent(event *model.VoteEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("序列化投票事件失败: %w", err)
	}

	return kafka.Message{
		Key:     []byte(event.VoterID),
		Value:   data,
		Time:    time.Now(),
		Headers: []kafka.Header{{Key: eventTypeHeader, Value: []byte(EventVoteCast)}},
	}, nil
}

// decodeVoteEvent 解析投票事件，未知事件类型返回 ok=false
func decodeVoteEvent(m kafka.Message) (*model.VoteEvent, bool, error) {
	for _, h := range m.Headers {
		if h.Key == eventTypeHeader && string(h.Value) != EventVoteCast {
			return nil, false, nil
		}
	}

	var event model.VoteEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return nil, false, fmt.Errorf("解析投票事件失败: %w", err)
	}
	if event.VoteID == "" || event.VoterID == "" {
		return nil, false, fmt.Errorf("投票事件缺少必要字段")
	}
	return &event, true, nil
}

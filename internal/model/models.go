package model

import (
	"time"
)

// Category 奖项
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Nominee 候选人
type Nominee struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Nomination 候选人与奖项的提名关系
type Nomination struct {
	ID         string `json:"id"`
	CategoryID string `json:"categoryId"`
	NomineeID  string `json:"nomineeId"`
}

// Vote 投票记录，(VoterID, CategoryID) 由存储层保证唯一
type Vote struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"categoryId"`
	NomineeID  string    `json:"nomineeId"`
	VoterID    string    `json:"voterId"`
	VoterEmail string    `json:"voterEmail"`
	CreatedAt  time.Time `json:"createdAt"`
}

// VoteInput 投票请求中的选择
type VoteInput struct {
	CategoryID string `json:"categoryId"`
	NomineeID  string `json:"nomineeId"`
}

// NewVote 写入存储的投票数据
type NewVote struct {
	CategoryID string
	NomineeID  string
	VoterID    string
	VoterEmail string
}

// VoteFilter 投票查询条件，空字段表示不过滤
type VoteFilter struct {
	VoterID string
}

// Session 当前会话中的投票人身份
type Session struct {
	VoterID string `json:"voterId"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// VoteLog 投票审计日志
type VoteLog struct {
	ID         int64     `json:"id"`
	VoteID     string    `json:"voteId"`
	VoterID    string    `json:"voterId"`
	VoterEmail string    `json:"voterEmail"`
	CategoryID string    `json:"categoryId"`
	NomineeID  string    `json:"nomineeId"`
	VotedAt    time.Time `json:"votedAt"`
}

// VoteEvent Kafka投票事件
type VoteEvent struct {
	VoteID     string    `json:"voteId"`
	VoterID    string    `json:"voterId"`
	VoterEmail string    `json:"voterEmail"`
	CategoryID string    `json:"categoryId"`
	NomineeID  string    `json:"nomineeId"`
	VotedAt    time.Time `json:"votedAt"`
}

// NewVoteEvent 由投票记录生成事件
func NewVoteEvent(v *Vote) *VoteEvent {
	return &VoteEvent{
		VoteID:     v.ID,
		VoterID:    v.VoterID,
		VoterEmail: v.VoterEmail,
		CategoryID: v.CategoryID,
		NomineeID:  v.NomineeID,
		VotedAt:    v.CreatedAt,
	}
}

// Log 转换为审计日志
func (e *VoteEvent) Log() *VoteLog {
	return &VoteLog{
		VoteID:     e.VoteID,
		VoterID:    e.VoterID,
		VoterEmail: e.VoterEmail,
		CategoryID: e.CategoryID,
		NomineeID:  e.NomineeID,
		VotedAt:    e.VotedAt,
	}
}

// DashboardStats 管理后台统计
type DashboardStats struct {
	Categories int `json:"categories"`
	Nominees   int `json:"nominees"`
	Votes      int `json:"votes"`
}

package repository

import (
	"context"

	"github.com/lvdashuaibi/awardvote/internal/model"
)

// EntityReader 读取奖项结构与投票
type EntityReader interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListNominees(ctx context.Context) ([]model.Nominee, error)
	ListNominations(ctx context.Context) ([]model.Nomination, error)
	ListVotes(ctx context.Context, filter model.VoteFilter) ([]model.Vote, error)
}

// VoteWriter 写入投票。(VoterID, CategoryID) 重复时返回包装了 model.ErrDuplicateVote 的错误
type VoteWriter interface {
	InsertVote(ctx context.Context, v model.NewVote) (*model.Vote, error)
}

// AdminStore 管理员维护奖项与候选人
type AdminStore interface {
	CreateCategory(ctx context.Context, name string, description *string) (*model.Category, error)
	UpdateCategory(ctx context.Context, id, name string, description *string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	CreateNominee(ctx context.Context, name string, categoryIDs []string) (*model.Nominee, error)
	UpdateNominee(ctx context.Context, id, name string) (*model.Nominee, error)
	DeleteNominee(ctx context.Context, id string) error
	// LinkNominee 已存在相同提名时直接返回已有记录
	LinkNominee(ctx context.Context, categoryID, nomineeID string) (*model.Nomination, error)
	UnlinkNominee(ctx context.Context, categoryID, nomineeID string) error
	CountEntities(ctx context.Context) (model.DashboardStats, error)
}

// AuditWriter 写入投票审计日志
type AuditWriter interface {
	SaveVoteLog(ctx context.Context, l *model.VoteLog) error
}

// Store 实体存储
type Store interface {
	EntityReader
	VoteWriter
	AdminStore
	AuditWriter
	Close() error
}

var (
	_ Store = (*MySQLRepository)(nil)
	_ Store = (*MemoryRepository)(nil)
)

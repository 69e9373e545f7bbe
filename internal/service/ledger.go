package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/lvdashuaibi/awardvote/internal/model"
)

//go:generate mockgen -destination=mocks/mock_ledger.go -package=mocks github.com/lvdashuaibi/awardvote/internal/service BallotCache,EventPublisher

// VoteLedger 投票人已投奖项的只读视图，用于展示和提前拦截；
// 是否能够投票以存储层的唯一约束为准
type VoteLedger interface {
	Ballot(ctx context.Context, voterID string) (*model.VoterBallot, error)
	HasVoted(ctx context.Context, voterID, categoryID string) (bool, error)
	// Invalidate 写入投票后调用，下次读取时从存储重新加载
	Invalidate(ctx context.Context, voterID string) error
}

// BallotCache 已投状态缓存
type BallotCache interface {
	GetBallot(ctx context.Context, voterID string) (*model.VoterBallot, bool, error)
	SetBallot(ctx context.Context, ballot *model.VoterBallot) error
	DeleteBallot(ctx context.Context, voterID string) error
}

// LedgerReader 从存储读取投票人的投票
type LedgerReader interface {
	ListNominees(ctx context.Context) ([]model.Nominee, error)
	ListVotes(ctx context.Context, filter model.VoteFilter) ([]model.Vote, error)
}

// StoreLedger 每次直接查询存储
type StoreLedger struct {
	reader LedgerReader
}

func NewStoreLedger(reader LedgerReader) *StoreLedger {
	return &StoreLedger{reader: reader}
}

// Ballot 查询投票人的全部投票及所选候选人名称，候选人已删除时名称为空
func (l *StoreLedger) Ballot(ctx context.Context, voterID string) (*model.VoterBallot, error) {
	votes, err := l.reader.ListVotes(ctx, model.VoteFilter{VoterID: voterID})
	if err != nil {
		return nil, fmt.Errorf("查询投票人 %s 的投票失败: %w", voterID, err)
	}

	ballot := &model.VoterBallot{VoterID: voterID, Choices: make(map[string]model.BallotChoice, len(votes))}
	if len(votes) == 0 {
		return ballot, nil
	}

	nominees, err := l.reader.ListNominees(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询候选人失败: %w", err)
	}
	names := make(map[string]string, len(nominees))
	for _, n := range nominees {
		names[n.ID] = n.Name
	}

	for _, v := range votes {
		ballot.Choices[v.CategoryID] = model.BallotChoice{NomineeID: v.NomineeID, NomineeName: names[v.NomineeID]}
	}
	return ballot, nil
}

func (l *StoreLedger) HasVoted(ctx context.Context, voterID, categoryID string) (bool, error) {
	ballot, err := l.Ballot(ctx, voterID)
	if err != nil {
		return false, err
	}
	return ballot.HasVoted(categoryID), nil
}

func (l *StoreLedger) Invalidate(ctx context.Context, voterID string) error {
	return nil
}

// CachedLedger 读穿缓存: 命中直接返回，未命中从 source 加载后写入缓存
type CachedLedger struct {
	source VoteLedger
	cache  BallotCache
	log    *slog.Logger
	// gen 每次失效递增，加载期间发生过失效的结果不回填缓存
	gen atomic.Uint64
}

func NewCachedLedger(source VoteLedger, cache BallotCache, logger *slog.Logger) *CachedLedger {
	return &CachedLedger{source: source, cache: cache, log: resolveLogger(logger)}
}

func (l *CachedLedger) Ballot(ctx context.Context, voterID string) (*model.VoterBallot, error) {
	ballot, found, err := l.cache.GetBallot(ctx, voterID)
	if err != nil {
		l.log.Warn("读取投票状态缓存失败", "voter_id", voterID, "err", err)
	}
	if found && ballot != nil {
		return ballot, nil
	}

	gen := l.gen.Load()
	ballot, err = l.source.Ballot(ctx, voterID)
	if err != nil {
		return nil, err
	}

	if l.gen.Load() != gen {
		l.log.Debug("加载期间缓存已失效，跳过回填", "voter_id", voterID)
		return ballot, nil
	}
	if err := l.cache.SetBallot(ctx, ballot); err != nil {
		l.log.Warn("写入投票状态缓存失败", "voter_id", voterID, "err", err)
	}
	return ballot, nil
}

func (l *CachedLedger) HasVoted(ctx context.Context, voterID, categoryID string) (bool, error) {
	ballot, err := l.Ballot(ctx, voterID)
	if err != nil {
		return false, err
	}
	return ballot.HasVoted(categoryID), nil
}

func (l *CachedLedger) Invalidate(ctx context.Context, voterID string) error {
	l.gen.Add(1)
	if err := l.cache.DeleteBallot(ctx, voterID); err != nil {
		return err
	}
	return l.source.Invalidate(ctx, voterID)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lvdashuaibi/awardvote/internal/model"
	"github.com/lvdashuaibi/awardvote/internal/repository"
)

// BallotGuard 投票写入入口，保证每个投票人每个奖项至多一票。
// 最终以存储层唯一约束为准，ledger 只用于提前拦截已知的重复投票。
type BallotGuard struct {
	store  repository.VoteWriter
	ledger VoteLedger
	log    *slog.Logger
}

func NewBallotGuard(store repository.VoteWriter, ledger VoteLedger, logger *slog.Logger) *BallotGuard {
	return &BallotGuard{store: store, ledger: ledger, log: resolveLogger(logger)}
}

// Cast 为会话中的投票人写入一票。
// 返回 model.ErrNoSession、model.ErrInvalidSelection、model.ErrDuplicateVote 或存储错误。
// 调用方需保证候选人属于该奖项。
func (g *BallotGuard) Cast(ctx context.Context, session *model.Session, in model.VoteInput) (*model.Vote, error) {
	if session == nil || session.VoterID == "" {
		return nil, model.ErrNoSession
	}
	if in.CategoryID == "" || in.NomineeID == "" {
		return nil, fmt.Errorf("%w: 未选择候选人", model.ErrInvalidSelection)
	}

	voted, err := g.ledger.HasVoted(ctx, session.VoterID, in.CategoryID)
	if err != nil {
		g.log.Warn("查询已投状态失败，继续提交", "voter_id", session.VoterID, "category_id", in.CategoryID, "err", err)
	} else if voted {
		return nil, fmt.Errorf("%w: 已在该奖项投票", model.ErrInvalidSelection)
	}

	vote, err := g.store.InsertVote(ctx, model.NewVote{
		CategoryID: in.CategoryID,
		NomineeID:  in.NomineeID,
		VoterID:    session.VoterID,
		VoterEmail: session.Email,
	})
	g.invalidate(ctx, session.VoterID)

	if err != nil {
		if errors.Is(err, model.ErrDuplicateVote) {
			g.log.Info("重复投票被存储层拒绝", "voter_id", session.VoterID, "category_id", in.CategoryID)
			return nil, model.ErrDuplicateVote
		}
		return nil, fmt.Errorf("写入投票失败: %w", err)
	}

	g.log.Info("投票成功", "voter_id", session.VoterID, "category_id", in.CategoryID, "vote_id", vote.ID)
	return vote, nil
}

func (g *BallotGuard) invalidate(ctx context.Context, voterID string) {
	if err := g.ledger.Invalidate(ctx, voterID); err != nil {
		g.log.Warn("刷新投票状态缓存失败", "voter_id", voterID, "err", err)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lvdashuaibi/awardvote/internal/model"
	"github.com/lvdashuaibi/awardvote/internal/repository"
)

// EventPublisher 投票事件发布
type EventPublisher interface {
	PublishVoteCast(ctx context.Context, event *model.VoteEvent) error
}

// VoteStore 投票服务使用的存储能力
type VoteStore interface {
	repository.EntityReader
	repository.VoteWriter
	repository.AuditWriter
}

type VoteService struct {
	store     VoteStore
	ledger    VoteLedger
	guard     *BallotGuard
	publisher EventPublisher
	tally     TallyOptions
	log       *slog.Logger
}

// NewVoteService publisher 为 nil 时审计日志同步写入
func NewVoteService(
	store VoteStore,
	ledger VoteLedger,
	publisher EventPublisher,
	tally TallyOptions,
	logger *slog.Logger,
) *VoteService {
	logger = resolveLogger(logger)
	return &VoteService{
		store:     store,
		ledger:    ledger,
		guard:     NewBallotGuard(store, ledger, logger),
		publisher: publisher,
		tally:     tally,
		log:       logger,
	}
}

// Structure 获取奖项结构
func (s *VoteService) Structure(ctx context.Context) (*model.Structure, error) {
	return LoadStructure(ctx, s.store, s.log)
}

// Ballot 获取投票人的投票页: 奖项结构及每个奖项的已投状态
func (s *VoteService) Ballot(ctx context.Context, session *model.Session) (*model.Ballot, error) {
	if session == nil {
		return nil, model.ErrNoSession
	}

	structure, err := s.Structure(ctx)
	if err != nil {
		return nil, err
	}

	voted, err := s.ledger.Ballot(ctx, session.VoterID)
	if err != nil {
		return nil, fmt.Errorf("获取已投状态失败: %w", err)
	}

	ballot := &model.Ballot{
		Categories: make([]model.BallotCategory, 0, len(structure.Categories)),
		Warnings:   structure.Warnings,
	}
	for _, cn := range structure.Categories {
		bc := model.BallotCategory{CategoryNominees: cn}
		if choice, ok := voted.Choices[cn.Category.ID]; ok {
			bc.HasVoted = true
			bc.Choice = &choice
		}
		ballot.Categories = append(ballot.Categories, bc)
	}
	return ballot, nil
}

// CastVote 投票。重复投票和无效选择转换为结果状态，不作为错误返回
func (s *VoteService) CastVote(ctx context.Context, session *model.Session, in model.VoteInput) (*model.CastResult, error) {
	if session == nil {
		return nil, model.ErrNoSession
	}

	if in.CategoryID != "" && in.NomineeID != "" {
		ok, err := s.isNominated(ctx, in)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &model.CastResult{
				Status:  model.CastInvalidSelection,
				Message: "候选人不属于该奖项",
			}, nil
		}
	}

	vote, err := s.guard.Cast(ctx, session, in)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrDuplicateVote):
		return &model.CastResult{Status: model.CastAlreadyVoted, Message: "您已在该奖项投过票"}, nil
	case errors.Is(err, model.ErrInvalidSelection):
		return &model.CastResult{Status: model.CastInvalidSelection, Message: err.Error()}, nil
	default:
		return nil, err
	}

	s.recordVote(ctx, vote)
	return &model.CastResult{Status: model.CastAccepted, Message: "投票成功", Vote: vote}, nil
}

// isNominated 候选人是否在该奖项的提名列表中
func (s *VoteService) isNominated(ctx context.Context, in model.VoteInput) (bool, error) {
	structure, err := s.Structure(ctx)
	if err != nil {
		return false, err
	}
	if len(structure.Warnings) > 0 {
		return false, fmt.Errorf("无法校验提名: %w", model.ErrLoadFailure)
	}

	for _, cn := range structure.Categories {
		if cn.Category.ID != in.CategoryID {
			continue
		}
		for _, n := range cn.Nominees {
			if n.ID == in.NomineeID {
				return true, nil
			}
		}
		return false, nil
	}
	return false, nil
}

// recordVote 发送投票事件，发送失败时同步写入审计日志
// 投票已提交，请求取消不应丢失事件，因此脱离调用方的取消信号
func (s *VoteService) recordVote(ctx context.Context, vote *model.Vote) {
	ctx = context.WithoutCancel(ctx)
	event := model.NewVoteEvent(vote)

	if s.publisher != nil {
		err := s.publisher.PublishVoteCast(ctx, event)
		if err == nil {
			return
		}
		s.log.Error("发送投票事件到Kafka失败，改为同步写入审计日志", "vote_id", vote.ID, "err", err)
	}

	if err := s.store.SaveVoteLog(ctx, event.Log()); err != nil {
		s.log.Error("写入投票审计日志失败", "vote_id", vote.ID, "err", err)
	}
}

// ProcessVoteEvent 处理投票事件（消费者使用）
func (s *VoteService) ProcessVoteEvent(ctx context.Context, event *model.VoteEvent) error {
	if err := s.store.SaveVoteLog(ctx, event.Log()); err != nil {
		return fmt.Errorf("处理投票事件写入审计日志失败: %w", err)
	}

	// 其他实例可能缓存了该投票人的旧状态
	if err := s.ledger.Invalidate(ctx, event.VoterID); err != nil {
		s.log.Warn("处理投票事件刷新缓存失败", "voter_id", event.VoterID, "err", err)
	}
	return nil
}

// Results 计算所有奖项的结果。任何必需数据读取失败都返回 LoadError
func (s *VoteService) Results(ctx context.Context) ([]model.CategoryResult, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, &model.LoadError{Resource: "categories", Err: err}
	}
	nominees, err := s.store.ListNominees(ctx)
	if err != nil {
		return nil, &model.LoadError{Resource: "nominees", Err: err}
	}
	nominations, err := s.store.ListNominations(ctx)
	if err != nil {
		return nil, &model.LoadError{Resource: "nominations", Err: err}
	}
	votes, err := s.store.ListVotes(ctx, model.VoteFilter{})
	if err != nil {
		return nil, &model.LoadError{Resource: "votes", Err: err}
	}

	return Tally(Assemble(categories, nominees, nominations), votes, s.tally), nil
}

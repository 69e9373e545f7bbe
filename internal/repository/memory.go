package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lvdashuaibi/awardvote/internal/model"
)

// MemoryRepository 内存存储，语义与MySQL表结构一致:
// 奖项名称唯一、(voter, category) 唯一、删除奖项或候选人时级联删除提名和投票
type MemoryRepository struct {
	mu          sync.RWMutex
	categories  []model.Category
	nominees    []model.Nominee
	nominations []model.Nomination
	votes       []model.Vote
	logs        []model.VoteLog
	now         func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

func (r *MemoryRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Category(nil), r.categories...), nil
}

func (r *MemoryRepository) ListNominees(ctx context.Context) ([]model.Nominee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Nominee(nil), r.nominees...), nil
}

func (r *MemoryRepository) ListNominations(ctx context.Context) ([]model.Nomination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Nomination(nil), r.nominations...), nil
}

func (r *MemoryRepository) ListVotes(ctx context.Context, filter model.VoteFilter) ([]model.Vote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	votes := make([]model.Vote, 0, len(r.votes))
	for _, v := range r.votes {
		if filter.VoterID != "" && v.VoterID != filter.VoterID {
			continue
		}
		votes = append(votes, v)
	}
	return votes, nil
}

// InsertVote 在写锁内检查唯一性并插入，等价于数据库唯一索引
func (r *MemoryRepository) InsertVote(ctx context.Context, in model.NewVote) (*model.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.categoryIndex(in.CategoryID) < 0 || r.nomineeIndex(in.NomineeID) < 0 {
		return nil, fmt.Errorf("插入投票失败: %w", model.ErrNotFound)
	}
	for _, v := range r.votes {
		if v.VoterID == in.VoterID && v.CategoryID == in.CategoryID {
			return nil, fmt.Errorf("插入投票失败: %w", model.ErrDuplicateVote)
		}
	}

	vote := model.Vote{
		ID:         uuid.NewString(),
		CategoryID: in.CategoryID,
		NomineeID:  in.NomineeID,
		VoterID:    in.VoterID,
		VoterEmail: in.VoterEmail,
		CreatedAt:  r.now(),
	}
	r.votes = append(r.votes, vote)
	return &vote, nil
}

func (r *MemoryRepository) CreateCategory(ctx context.Context, name string, description *string) (*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.categoryNameTaken(name, "") {
		return nil, fmt.Errorf("创建奖项失败: %w", model.ErrCategoryExists)
	}
	c := model.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: copyString(description),
		CreatedAt:   r.now(),
	}
	r.categories = append(r.categories, c)
	return &c, nil
}

func (r *MemoryRepository) UpdateCategory(ctx context.Context, id, name string, description *string) (*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.categoryIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("更新奖项失败: %w", model.ErrNotFound)
	}
	if r.categoryNameTaken(name, id) {
		return nil, fmt.Errorf("更新奖项失败: %w", model.ErrCategoryExists)
	}
	r.categories[i].Name = name
	r.categories[i].Description = copyString(description)
	c := r.categories[i]
	return &c, nil
}

func (r *MemoryRepository) DeleteCategory(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.categoryIndex(id)
	if i < 0 {
		return fmt.Errorf("删除奖项失败: %w", model.ErrNotFound)
	}
	r.categories = append(r.categories[:i], r.categories[i+1:]...)
	r.nominations = filterNominations(r.nominations, func(n model.Nomination) bool { return n.CategoryID != id })
	r.votes = filterVotes(r.votes, func(v model.Vote) bool { return v.CategoryID != id })
	return nil
}

func (r *MemoryRepository) CreateNominee(ctx context.Context, name string, categoryIDs []string) (*model.Nominee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cid := range categoryIDs {
		if r.categoryIndex(cid) < 0 {
			return nil, fmt.Errorf("创建候选人失败: 奖项 %s: %w", cid, model.ErrNotFound)
		}
	}

	n := model.Nominee{ID: uuid.NewString(), Name: name, CreatedAt: r.now()}
	r.nominees = append(r.nominees, n)
	for _, cid := range categoryIDs {
		if !r.hasNomination(cid, n.ID) {
			r.nominations = append(r.nominations, model.Nomination{ID: uuid.NewString(), CategoryID: cid, NomineeID: n.ID})
		}
	}
	return &n, nil
}

func (r *MemoryRepository) UpdateNominee(ctx context.Context, id, name string) (*model.Nominee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.nomineeIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("更新候选人失败: %w", model.ErrNotFound)
	}
	r.nominees[i].Name = name
	n := r.nominees[i]
	return &n, nil
}

func (r *MemoryRepository) DeleteNominee(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.nomineeIndex(id)
	if i < 0 {
		return fmt.Errorf("删除候选人失败: %w", model.ErrNotFound)
	}
	r.nominees = append(r.nominees[:i], r.nominees[i+1:]...)
	r.nominations = filterNominations(r.nominations, func(n model.Nomination) bool { return n.NomineeID != id })
	r.votes = filterVotes(r.votes, func(v model.Vote) bool { return v.NomineeID != id })
	return nil
}

func (r *MemoryRepository) LinkNominee(ctx context.Context, categoryID, nomineeID string) (*model.Nomination, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.categoryIndex(categoryID) < 0 || r.nomineeIndex(nomineeID) < 0 {
		return nil, fmt.Errorf("添加提名失败: %w", model.ErrNotFound)
	}
	for _, n := range r.nominations {
		if n.CategoryID == categoryID && n.NomineeID == nomineeID {
			existing := n
			return &existing, nil
		}
	}
	n := model.Nomination{ID: uuid.NewString(), CategoryID: categoryID, NomineeID: nomineeID}
	r.nominations = append(r.nominations, n)
	return &n, nil
}

func (r *MemoryRepository) UnlinkNominee(ctx context.Context, categoryID, nomineeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.nominations)
	r.nominations = filterNominations(r.nominations, func(n model.Nomination) bool {
		return n.CategoryID != categoryID || n.NomineeID != nomineeID
	})
	if len(r.nominations) == before {
		return fmt.Errorf("移除提名失败: %w", model.ErrNotFound)
	}
	return nil
}

func (r *MemoryRepository) CountEntities(ctx context.Context) (model.DashboardStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return model.DashboardStats{
		Categories: len(r.categories),
		Nominees:   len(r.nominees),
		Votes:      len(r.votes),
	}, nil
}

// SaveVoteLog 同一投票重复写入时忽略
func (r *MemoryRepository) SaveVoteLog(ctx context.Context, l *model.VoteLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.logs {
		if existing.VoteID == l.VoteID {
			return nil
		}
	}
	entry := *l
	entry.ID = int64(len(r.logs) + 1)
	r.logs = append(r.logs, entry)
	return nil
}

// VoteLogs 返回已写入的审计日志
func (r *MemoryRepository) VoteLogs() []model.VoteLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.VoteLog(nil), r.logs...)
}

func (r *MemoryRepository) Close() error {
	return nil
}

func (r *MemoryRepository) categoryIndex(id string) int {
	for i, c := range r.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) nomineeIndex(id string) int {
	for i, n := range r.nominees {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) categoryNameTaken(name, exceptID string) bool {
	for _, c := range r.categories {
		if c.Name == name && c.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) hasNomination(categoryID, nomineeID string) bool {
	for _, n := range r.nominations {
		if n.CategoryID == categoryID && n.NomineeID == nomineeID {
			return true
		}
	}
	return false
}

func filterNominations(in []model.Nomination, keep func(model.Nomination) bool) []model.Nomination {
	out := in[:0]
	for _, n := range in {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

func filterVotes(in []model.Vote, keep func(model.Vote) bool) []model.Vote {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

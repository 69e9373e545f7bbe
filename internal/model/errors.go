package model

import (
	"errors"
	"fmt"
)

var (
	// ErrLoadFailure 必需数据读取失败，无法计算结果
	ErrLoadFailure = errors.New("数据加载失败")
	// ErrDuplicateVote 该投票人已在该奖项投票（存储层唯一约束冲突）
	ErrDuplicateVote = errors.New("重复投票")
	// ErrInvalidSelection 未选择候选人，或该奖项已投票
	ErrInvalidSelection = errors.New("无效的选择")
	ErrNoSession        = errors.New("未登录")
	ErrForbidden        = errors.New("无权限")
	ErrNotFound         = errors.New("记录不存在")
	ErrCategoryExists   = errors.New("奖项名称已存在")
	ErrInvalidInput     = errors.New("参数无效")
)

// LoadError 读取某类实体失败
type LoadError struct {
	Resource string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("加载%s失败: %v", e.Resource, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrLoadFailure) 成立
func (e *LoadError) Is(target error) bool {
	return target == ErrLoadFailure
}

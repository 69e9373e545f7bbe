package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lvdashuaibi/awardvote/internal/model"
	"github.com/lvdashuaibi/awardvote/internal/repository"
)

// AdminService 奖项与候选人维护，所有操作要求管理员会话
type AdminService struct {
	store repository.AdminStore
	log   *slog.Logger
}

func NewAdminService(store repository.AdminStore, logger *slog.Logger) *AdminService {
	return &AdminService{store: store, log: resolveLogger(logger)}
}

func requireAdmin(session *model.Session) error {
	if session == nil {
		return model.ErrNoSession
	}
	if !session.IsAdmin {
		return model.ErrForbidden
	}
	return nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: 名称不能为空", model.ErrInvalidInput)
	}
	return name, nil
}

// cleanDescription 空白描述视为无描述
func cleanDescription(desc *string) *string {
	if desc == nil {
		return nil
	}
	d := strings.TrimSpace(*desc)
	if d == "" {
		return nil
	}
	return &d
}

// Dashboard 统计奖项、候选人和投票数量
func (s *AdminService) Dashboard(ctx context.Context, session *model.Session) (model.DashboardStats, error) {
	if err := requireAdmin(session); err != nil {
		return model.DashboardStats{}, err
	}
	return s.store.CountEntities(ctx)
}

func (s *AdminService) CreateCategory(ctx context.Context, session *model.Session, name string, description *string) (*model.Category, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	c, err := s.store.CreateCategory(ctx, name, cleanDescription(description))
	if err != nil {
		return nil, err
	}
	s.log.Info("创建奖项", "category_id", c.ID, "name", c.Name, "admin", session.Email)
	return c, nil
}

func (s *AdminService) UpdateCategory(ctx context.Context, session *model.Session, id, name string, description *string) (*model.Category, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	c, err := s.store.UpdateCategory(ctx, id, name, cleanDescription(description))
	if err != nil {
		return nil, err
	}
	s.log.Info("更新奖项", "category_id", c.ID, "name", c.Name, "admin", session.Email)
	return c, nil
}

// DeleteCategory 删除奖项及其提名和投票
func (s *AdminService) DeleteCategory(ctx context.Context, session *model.Session, id string) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.log.Info("删除奖项", "category_id", id, "admin", session.Email)
	return nil
}

// CreateNominee 创建候选人并提名到指定奖项
func (s *AdminService) CreateNominee(ctx context.Context, session *model.Session, name string, categoryIDs []string) (*model.Nominee, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	n, err := s.store.CreateNominee(ctx, name, categoryIDs)
	if err != nil {
		return nil, err
	}
	s.log.Info("创建候选人", "nominee_id", n.ID, "name", n.Name, "categories", len(categoryIDs), "admin", session.Email)
	return n, nil
}

func (s *AdminService) UpdateNominee(ctx context.Context, session *model.Session, id, name string) (*model.Nominee, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateNominee(ctx, id, name)
}

// DeleteNominee 删除候选人及其提名和投票
func (s *AdminService) DeleteNominee(ctx context.Context, session *model.Session, id string) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	if err := s.store.DeleteNominee(ctx, id); err != nil {
		return err
	}
	s.log.Info("删除候选人", "nominee_id", id, "admin", session.Email)
	return nil
}

func (s *AdminService) LinkNominee(ctx context.Context, session *model.Session, categoryID, nomineeID string) (*model.Nomination, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	return s.store.LinkNominee(ctx, categoryID, nomineeID)
}

func (s *AdminService) UnlinkNominee(ctx context.Context, session *model.Session, categoryID, nomineeID string) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	return s.store.UnlinkNominee(ctx, categoryID, nomineeID)
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/lvdashuaibi/awardvote/config"
	"github.com/lvdashuaibi/awardvote/internal/model"
)

const (
	mysqlErrDuplicateEntry = 1062
	mysqlErrNoReferenced   = 1452

	categoryNameKey = "uq_categories_name"
)

// MySQLRepository 主库写、从库读。投票唯一性由 uq_votes_voter_category 保证
type MySQLRepository struct {
	masterDB *sql.DB
	slaveDB  *sql.DB
	log      *slog.Logger
}

func NewMySQLRepository(cfg config.MySQLConfig, logger *slog.Logger) (*MySQLRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	masterDB, err := openDB(cfg.Master, cfg)
	if err != nil {
		return nil, fmt.Errorf("连接主数据库失败: %w", err)
	}

	if err = masterDB.Ping(); err != nil {
		masterDB.Close()
		return nil, fmt.Errorf("主数据库连接测试失败: %w", err)
	}

	slaveDB := masterDB
	if cfg.Slave != "" {
		db, err := openDB(cfg.Slave, cfg)
		if err != nil {
			return nil, fmt.Errorf("连接从数据库失败: %w", err)
		}
		if err = db.Ping(); err != nil {
			logger.Warn("从数据库连接测试失败，将使用主数据库代替", "err", err)
			db.Close()
		} else {
			slaveDB = db
		}
	}

	return NewMySQLRepositoryFromDB(masterDB, slaveDB, logger), nil
}

// NewMySQLRepositoryFromDB 使用已有连接创建仓库，slave 为 nil 时读写都走主库
func NewMySQLRepositoryFromDB(master, slave *sql.DB, logger *slog.Logger) *MySQLRepository {
	if slave == nil {
		slave = master
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MySQLRepository{masterDB: master, slaveDB: slave, log: logger}
}

func openDB(dsn string, cfg config.MySQLConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// MasterDB 返回主库连接，用于执行迁移
func (r *MySQLRepository) MasterDB() *sql.DB {
	return r.masterDB
}

// ListCategories 按创建时间获取全部奖项
func (r *MySQLRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	query := "SELECT id, name, description, created_at FROM categories ORDER BY created_at, id"
	rows, err := r.slaveDB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询奖项失败: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var (
			c    model.Category
			desc sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &desc, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("扫描奖项失败: %w", err)
		}
		if desc.Valid {
			c.Description = &desc.String
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("迭代奖项失败: %w", err)
	}
	return categories, nil
}

// ListNominees 获取全部候选人
func (r *MySQLRepository) ListNominees(ctx context.Context) ([]model.Nominee, error) {
	query := "SELECT id, name, created_at FROM nominees ORDER BY created_at, id"
	rows, err := r.slaveDB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询候选人失败: %w", err)
	}
	defer rows.Close()

	var nominees []model.Nominee
	for rows.Next() {
		var n model.Nominee
		if err := rows.Scan(&n.ID, &n.Name, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("扫描候选人失败: %w", err)
		}
		nominees = append(nominees, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("迭代候选人失败: %w", err)
	}
	return nominees, nil
}

// ListNominations 获取全部提名关系
func (r *MySQLRepository) ListNominations(ctx context.Context) ([]model.Nomination, error) {
	query := "SELECT id, category_id, nominee_id FROM nominations ORDER BY created_at, id"
	rows, err := r.slaveDB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询提名失败: %w", err)
	}
	defer rows.Close()

	var nominations []model.Nomination
	for rows.Next() {
		var n model.Nomination
		if err := rows.Scan(&n.ID, &n.CategoryID, &n.NomineeID); err != nil {
			return nil, fmt.Errorf("扫描提名失败: %w", err)
		}
		nominations = append(nominations, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("迭代提名失败: %w", err)
	}
	return nominations, nil
}

// ListVotes 获取投票记录。按投票人过滤时读主库，保证刚写入的票可见
func (r *MySQLRepository) ListVotes(ctx context.Context, filter model.VoteFilter) ([]model.Vote, error) {
	db := r.slaveDB
	query := "SELECT id, category_id, nominee_id, voter_id, voter_email, created_at FROM votes"
	var args []any
	if filter.VoterID != "" {
		db = r.masterDB
		query += " WHERE voter_id = ?"
		args = append(args, filter.VoterID)
	}
	query += " ORDER BY created_at, id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询投票失败: %w", err)
	}
	defer rows.Close()

	var votes []model.Vote
	for rows.Next() {
		var v model.Vote
		if err := rows.Scan(&v.ID, &v.CategoryID, &v.NomineeID, &v.VoterID, &v.VoterEmail, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("扫描投票失败: %w", err)
		}
		votes = append(votes, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("迭代投票失败: %w", err)
	}
	return votes, nil
}

// InsertVote 插入投票，唯一索引冲突转换为 model.ErrDuplicateVote
func (r *MySQLRepository) InsertVote(ctx context.Context, in model.NewVote) (*model.Vote, error) {
	vote := &model.Vote{
		ID:         uuid.NewString(),
		CategoryID: in.CategoryID,
		NomineeID:  in.NomineeID,
		VoterID:    in.VoterID,
		VoterEmail: in.VoterEmail,
		CreatedAt:  time.Now(),
	}

	query := "INSERT INTO votes (id, category_id, nominee_id, voter_id, voter_email, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.masterDB.ExecContext(ctx, query,
		vote.ID, vote.CategoryID, vote.NomineeID, vote.VoterID, vote.VoterEmail, vote.CreatedAt)
	if err != nil {
		switch mysqlErrorNumber(err) {
		case mysqlErrDuplicateEntry:
			return nil, fmt.Errorf("插入投票失败: %w", model.ErrDuplicateVote)
		case mysqlErrNoReferenced:
			return nil, fmt.Errorf("插入投票失败: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("插入投票失败: %w", err)
	}

	return vote, nil
}

// CreateCategory 创建奖项
func (r *MySQLRepository) CreateCategory(ctx context.Context, name string, description *string) (*model.Category, error) {
	c := &model.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}

	query := "INSERT INTO categories (id, name, description, created_at) VALUES (?, ?, ?, ?)"
	if _, err := r.masterDB.ExecContext(ctx, query, c.ID, c.Name, nullString(description), c.CreatedAt); err != nil {
		return nil, fmt.Errorf("创建奖项失败: %w", translateCategoryError(err))
	}
	return c, nil
}

// UpdateCategory 修改奖项名称和描述
func (r *MySQLRepository) UpdateCategory(ctx context.Context, id, name string, description *string) (*model.Category, error) {
	query := "UPDATE categories SET name = ?, description = ? WHERE id = ?"
	if _, err := r.masterDB.ExecContext(ctx, query, name, nullString(description), id); err != nil {
		return nil, fmt.Errorf("更新奖项失败: %w", translateCategoryError(err))
	}

	// MySQL 在值未变化时 RowsAffected 为0，因此重新查询判断是否存在
	var (
		c    model.Category
		desc sql.NullString
	)
	err := r.masterDB.QueryRowContext(ctx,
		"SELECT id, name, description, created_at FROM categories WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &desc, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("更新奖项失败: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("查询奖项失败: %w", err)
	}
	if desc.Valid {
		c.Description = &desc.String
	}
	return &c, nil
}

// DeleteCategory 删除奖项，提名和投票由外键级联删除
func (r *MySQLRepository) DeleteCategory(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "DELETE FROM categories WHERE id = ?", id, "删除奖项失败")
}

// CreateNominee 在同一事务中创建候选人及其提名
func (r *MySQLRepository) CreateNominee(ctx context.Context, name string, categoryIDs []string) (*model.Nominee, error) {
	n := &model.Nominee{ID: uuid.NewString(), Name: name, CreatedAt: time.Now()}

	tx, err := r.masterDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("开始事务失败: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO nominees (id, name, created_at) VALUES (?, ?, ?)", n.ID, n.Name, n.CreatedAt); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("创建候选人失败: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO nominations (id, category_id, nominee_id) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("准备提名语句失败: %w", err)
	}
	defer stmt.Close()

	seen := make(map[string]bool, len(categoryIDs))
	for _, cid := range categoryIDs {
		if seen[cid] {
			continue
		}
		seen[cid] = true
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), cid, n.ID); err != nil {
			tx.Rollback()
			if mysqlErrorNumber(err) == mysqlErrNoReferenced {
				return nil, fmt.Errorf("创建候选人失败: 奖项 %s: %w", cid, model.ErrNotFound)
			}
			return nil, fmt.Errorf("创建提名失败: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("提交事务失败: %w", err)
	}
	return n, nil
}

// UpdateNominee 修改候选人名称
func (r *MySQLRepository) UpdateNominee(ctx context.Context, id, name string) (*model.Nominee, error) {
	if _, err := r.masterDB.ExecContext(ctx, "UPDATE nominees SET name = ? WHERE id = ?", name, id); err != nil {
		return nil, fmt.Errorf("更新候选人失败: %w", err)
	}

	var n model.Nominee
	err := r.masterDB.QueryRowContext(ctx, "SELECT id, name, created_at FROM nominees WHERE id = ?", id).
		Scan(&n.ID, &n.Name, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("更新候选人失败: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("查询候选人失败: %w", err)
	}
	return &n, nil
}

// DeleteNominee 删除候选人，提名和投票由外键级联删除
func (r *MySQLRepository) DeleteNominee(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "DELETE FROM nominees WHERE id = ?", id, "删除候选人失败")
}

// LinkNominee 添加提名，已存在时返回已有记录
func (r *MySQLRepository) LinkNominee(ctx context.Context, categoryID, nomineeID string) (*model.Nomination, error) {
	tx, err := r.masterDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("开始事务失败: %w", err)
	}

	var existing model.Nomination
	err = tx.QueryRowContext(ctx,
		"SELECT id, category_id, nominee_id FROM nominations WHERE category_id = ? AND nominee_id = ? LIMIT 1 FOR UPDATE",
		categoryID, nomineeID,
	).Scan(&existing.ID, &existing.CategoryID, &existing.NomineeID)
	switch {
	case err == nil:
		tx.Rollback()
		return &existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		tx.Rollback()
		return nil, fmt.Errorf("查询提名失败: %w", err)
	}

	n := &model.Nomination{ID: uuid.NewString(), CategoryID: categoryID, NomineeID: nomineeID}
	if _, err := tx.ExecContext(ctx, "INSERT INTO nominations (id, category_id, nominee_id) VALUES (?, ?, ?)", n.ID, n.CategoryID, n.NomineeID); err != nil {
		tx.Rollback()
		if mysqlErrorNumber(err) == mysqlErrNoReferenced {
			return nil, fmt.Errorf("添加提名失败: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("添加提名失败: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("提交事务失败: %w", err)
	}
	return n, nil
}

// UnlinkNominee 移除提名关系（含重复记录）
func (r *MySQLRepository) UnlinkNominee(ctx context.Context, categoryID, nomineeID string) error {
	result, err := r.masterDB.ExecContext(ctx,
		"DELETE FROM nominations WHERE category_id = ? AND nominee_id = ?", categoryID, nomineeID)
	if err != nil {
		return fmt.Errorf("移除提名失败: %w", err)
	}
	return requireAffected(result, "移除提名失败")
}

// CountEntities 统计奖项、候选人与投票数量
func (r *MySQLRepository) CountEntities(ctx context.Context) (model.DashboardStats, error) {
	var stats model.DashboardStats
	query := `SELECT
		(SELECT COUNT(*) FROM categories),
		(SELECT COUNT(*) FROM nominees),
		(SELECT COUNT(*) FROM votes)`
	if err := r.slaveDB.QueryRowContext(ctx, query).Scan(&stats.Categories, &stats.Nominees, &stats.Votes); err != nil {
		return stats, fmt.Errorf("统计数据失败: %w", err)
	}
	return stats, nil
}

// SaveVoteLog 写入审计日志，同一投票重复投递时忽略
func (r *MySQLRepository) SaveVoteLog(ctx context.Context, l *model.VoteLog) error {
	query := `INSERT INTO vote_logs (vote_id, voter_id, voter_email, category_id, nominee_id, voted_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON DUPLICATE KEY UPDATE vote_id = vote_id`
	_, err := r.masterDB.ExecContext(ctx, query,
		l.VoteID, l.VoterID, l.VoterEmail, l.CategoryID, l.NomineeID, l.VotedAt)
	if err != nil {
		return fmt.Errorf("保存投票日志失败: %w", err)
	}
	return nil
}

func (r *MySQLRepository) deleteByID(ctx context.Context, query, id, msg string) error {
	result, err := r.masterDB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return requireAffected(result, msg)
}

// Close 关闭数据库连接
func (r *MySQLRepository) Close() error {
	var err error
	if r.slaveDB != nil && r.slaveDB != r.masterDB {
		err = r.slaveDB.Close()
	}
	if r.masterDB != nil {
		if cerr := r.masterDB.Close(); cerr != nil {
			err = cerr
		}
	}
	return err
}

func requireAffected(result sql.Result, msg string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("获取执行结果失败: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", msg, model.ErrNotFound)
	}
	return nil
}

// mysqlErrorNumber 返回MySQL错误码，非MySQL错误返回0
func mysqlErrorNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func translateCategoryError(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry && strings.Contains(me.Message, categoryNameKey) {
		return model.ErrCategoryExists
	}
	return err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

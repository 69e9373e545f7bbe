package graph

import (
	"context"
	"errors"
	"log/slog"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/lvdashuaibi/awardvote/internal/identity"
	"github.com/lvdashuaibi/awardvote/internal/model"
	"github.com/lvdashuaibi/awardvote/internal/service"
)

// Resolver GraphQL解析器
type Resolver struct {
	votes *service.VoteService
	admin *service.AdminService
	log   *slog.Logger
}

// NewResolver 创建新的解析器
func NewResolver(votes *service.VoteService, admin *service.AdminService, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{votes: votes, admin: admin, log: logger}
}

// resolverError 带错误码的 GraphQL 错误，错误码写入 extensions.code
type resolverError struct {
	msg  string
	code string
}

func (e *resolverError) Error() string { return e.msg }

func (e *resolverError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

// toGraphQLError 领域错误转换为对外错误码，未知错误不暴露细节
func (r *Resolver) toGraphQLError(op string, err error) error {
	switch {
	case errors.Is(err, model.ErrNoSession):
		return &resolverError{msg: err.Error(), code: "UNAUTHENTICATED"}
	case errors.Is(err, model.ErrForbidden):
		return &resolverError{msg: err.Error(), code: "FORBIDDEN"}
	case errors.Is(err, model.ErrNotFound):
		return &resolverError{msg: err.Error(), code: "NOT_FOUND"}
	case errors.Is(err, model.ErrCategoryExists):
		return &resolverError{msg: err.Error(), code: "CONFLICT"}
	case errors.Is(err, model.ErrInvalidInput):
		return &resolverError{msg: err.Error(), code: "BAD_USER_INPUT"}
	case errors.Is(err, model.ErrLoadFailure):
		r.log.Error("数据加载失败", "op", op, "err", err)
		return &resolverError{msg: "无法计算结果，请稍后重试", code: "LOAD_FAILURE"}
	default:
		r.log.Error("请求处理失败", "op", op, "err", err)
		return &resolverError{msg: "服务内部错误", code: "INTERNAL"}
	}
}

func session(ctx context.Context) *model.Session {
	s, _ := identity.FromContext(ctx)
	return s
}

// Me 当前会话
func (r *Resolver) Me(ctx context.Context) *SessionResolver {
	s := session(ctx)
	if s == nil {
		return nil
	}
	return &SessionResolver{s: s}
}

// Structure 奖项结构
func (r *Resolver) Structure(ctx context.Context) (*StructureResolver, error) {
	s, err := r.votes.Structure(ctx)
	if err != nil {
		return nil, r.toGraphQLError("structure", err)
	}
	return &StructureResolver{s: s}, nil
}

// Ballot 当前投票人的投票页
func (r *Resolver) Ballot(ctx context.Context) (*BallotResolver, error) {
	b, err := r.votes.Ballot(ctx, session(ctx))
	if err != nil {
		return nil, r.toGraphQLError("ballot", err)
	}
	return &BallotResolver{b: b}, nil
}

// Results 所有奖项的计票结果
func (r *Resolver) Results(ctx context.Context) ([]*CategoryResultResolver, error) {
	results, err := r.votes.Results(ctx)
	if err != nil {
		return nil, r.toGraphQLError("results", err)
	}
	out := make([]*CategoryResultResolver, len(results))
	for i, res := range results {
		out[i] = &CategoryResultResolver{r: res}
	}
	return out, nil
}

// Dashboard 管理后台统计
func (r *Resolver) Dashboard(ctx context.Context) (*DashboardResolver, error) {
	stats, err := r.admin.Dashboard(ctx, session(ctx))
	if err != nil {
		return nil, r.toGraphQLError("dashboard", err)
	}
	return &DashboardResolver{s: stats}, nil
}

// VoteInput 投票输入类型
type VoteInput struct {
	CategoryID graphql.ID
	NomineeID  *graphql.ID
}

// CastVote 投票。重复投票在结果状态中返回
func (r *Resolver) CastVote(ctx context.Context, args struct{ Input VoteInput }) (*CastResultResolver, error) {
	in := model.VoteInput{CategoryID: string(args.Input.CategoryID)}
	if args.Input.NomineeID != nil {
		in.NomineeID = string(*args.Input.NomineeID)
	}

	res, err := r.votes.CastVote(ctx, session(ctx), in)
	if err != nil {
		return nil, r.toGraphQLError("castVote", err)
	}
	return &CastResultResolver{r: res}, nil
}

// CategoryInput 奖项输入类型
type CategoryInput struct {
	Name        string
	Description *string
}

func (r *Resolver) CreateCategory(ctx context.Context, args struct{ Input CategoryInput }) (*CategoryResolver, error) {
	c, err := r.admin.CreateCategory(ctx, session(ctx), args.Input.Name, args.Input.Description)
	if err != nil {
		return nil, r.toGraphQLError("createCategory", err)
	}
	return &CategoryResolver{category: *c}, nil
}

func (r *Resolver) UpdateCategory(ctx context.Context, args struct {
	ID    graphql.ID
	Input CategoryInput
}) (*CategoryResolver, error) {
	c, err := r.admin.UpdateCategory(ctx, session(ctx), string(args.ID), args.Input.Name, args.Input.Description)
	if err != nil {
		return nil, r.toGraphQLError("updateCategory", err)
	}
	return &CategoryResolver{category: *c}, nil
}

func (r *Resolver) DeleteCategory(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	if err := r.admin.DeleteCategory(ctx, session(ctx), string(args.ID)); err != nil {
		return false, r.toGraphQLError("deleteCategory", err)
	}
	return true, nil
}

func (r *Resolver) CreateNominee(ctx context.Context, args struct {
	Name        string
	CategoryIDs *[]graphql.ID
}) (*NomineeResolver, error) {
	var categoryIDs []string
	if args.CategoryIDs != nil {
		for _, id := range *args.CategoryIDs {
			categoryIDs = append(categoryIDs, string(id))
		}
	}

	n, err := r.admin.CreateNominee(ctx, session(ctx), args.Name, categoryIDs)
	if err != nil {
		return nil, r.toGraphQLError("createNominee", err)
	}
	return &NomineeResolver{nominee: *n}, nil
}

func (r *Resolver) UpdateNominee(ctx context.Context, args struct {
	ID   graphql.ID
	Name string
}) (*NomineeResolver, error) {
	n, err := r.admin.UpdateNominee(ctx, session(ctx), string(args.ID), args.Name)
	if err != nil {
		return nil, r.toGraphQLError("updateNominee", err)
	}
	return &NomineeResolver{nominee: *n}, nil
}

func (r *Resolver) DeleteNominee(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	if err := r.admin.DeleteNominee(ctx, session(ctx), string(args.ID)); err != nil {
		return false, r.toGraphQLError("deleteNominee", err)
	}
	return true, nil
}

// linkArgs 提名关系参数
type linkArgs struct {
	CategoryID graphql.ID
	NomineeID  graphql.ID
}

func (r *Resolver) LinkNominee(ctx context.Context, args linkArgs) (*NominationResolver, error) {
	n, err := r.admin.LinkNominee(ctx, session(ctx), string(args.CategoryID), string(args.NomineeID))
	if err != nil {
		return nil, r.toGraphQLError("linkNominee", err)
	}
	return &NominationResolver{n: n}, nil
}

func (r *Resolver) UnlinkNominee(ctx context.Context, args linkArgs) (bool, error) {
	if err := r.admin.UnlinkNominee(ctx, session(ctx), string(args.CategoryID), string(args.NomineeID)); err != nil {
		return false, r.toGraphQLError("unlinkNominee", err)
	}
	return true, nil
}

package graph

import (
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/lvdashuaibi/awardvote/internal/model"
)

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// SessionResolver 会话解析器
type SessionResolver struct {
	s *model.Session
}

func (r *SessionResolver) VoterID() graphql.ID { return graphql.ID(r.s.VoterID) }
func (r *SessionResolver) Email() string { return r.s.Email }
func (r *SessionResolver) IsAdmin() bool { return r.s.IsAdmin }

// CategoryResolver 奖项解析器
type CategoryResolver struct {
	category model.Category
	nominees []model.Nominee
}

func (r *CategoryResolver) ID() graphql.ID { return graphql.ID(r.category.ID) }
func (r *CategoryResolver) Name() string { return r.category.Name }
func (r *CategoryResolver) Description() *string { return r.category.Description }
func (r *CategoryResolver) CreatedAt() string { return formatTime(r.category.CreatedAt) }
func (r *CategoryResolver) Nominees() []*NomineeResolver {
	return nomineeResolvers(r.nominees)
}

// NomineeResolver 候选人解析器
type NomineeResolver struct {
	nominee model.Nominee
}

func (r *NomineeResolver) ID() graphql.ID { return graphql.ID(r.nominee.ID) }
func (r *NomineeResolver) Name() string { return r.nominee.Name }
func (r *NomineeResolver) CreatedAt() string { return formatTime(r.nominee.CreatedAt) }

func nomineeResolvers(list []model.Nominee) []*NomineeResolver {
	out := make([]*NomineeResolver, len(list))
	for i, n := range list {
		out[i] = &NomineeResolver{nominee: n}
	}
	return out
}

// NominationResolver 提名解析器
type NominationResolver struct {
	n *model.Nomination
}

func (r *NominationResolver) ID() graphql.ID { return graphql.ID(r.n.ID) }
func (r *NominationResolver) CategoryID() graphql.ID { return graphql.ID(r.n.CategoryID) }
func (r *NominationResolver) NomineeID() graphql.ID { return graphql.ID(r.n.NomineeID) }

// StructureResolver 奖项结构解析器
type StructureResolver struct {
	s *model.Structure
}

func (r *StructureResolver) Categories() []*CategoryResolver {
	out := make([]*CategoryResolver, len(r.s.Categories))
	for i, cn := range r.s.Categories {
		out[i] = &CategoryResolver{category: cn.Category, nominees: cn.Nominees}
	}
	return out
}

func (r *StructureResolver) Warnings() []string { return nonNil(r.s.Warnings) }

// BallotResolver 投票页解析器
type BallotResolver struct {
	b *model.Ballot
}

func (r *BallotResolver) Categories() []*BallotCategoryResolver {
	out := make([]*BallotCategoryResolver, len(r.b.Categories))
	for i := range r.b.Categories {
		out[i] = &BallotCategoryResolver{c: r.b.Categories[i]}
	}
	return out
}

func (r *BallotResolver) Warnings() []string { return nonNil(r.b.Warnings) }

type BallotCategoryResolver struct {
	c model.BallotCategory
}

func (r *BallotCategoryResolver) Category() *CategoryResolver {
	return &CategoryResolver{category: r.c.Category, nominees: r.c.Nominees}
}

func (r *BallotCategoryResolver) HasVoted() bool { return r.c.HasVoted }

func (r *BallotCategoryResolver) Choice() *BallotChoiceResolver {
	if r.c.Choice == nil {
		return nil
	}
	return &BallotChoiceResolver{c: *r.c.Choice}
}

type BallotChoiceResolver struct {
	c model.BallotChoice
}

func (r *BallotChoiceResolver) NomineeID() graphql.ID { return graphql.ID(r.c.NomineeID) }
func (r *BallotChoiceResolver) NomineeName() string { return r.c.NomineeName }
func (r *BallotChoiceResolver) Label() string { return ChoiceLabel(r.c) }

// CategoryResultResolver 计票结果解析器
type CategoryResultResolver struct {
	r model.CategoryResult
}

func (r *CategoryResultResolver) CategoryID() graphql.ID { return graphql.ID(r.r.CategoryID) }
func (r *CategoryResultResolver) CategoryName() string { return r.r.CategoryName }
func (r *CategoryResultResolver) Status() string { return enumValue(r.r.Status) }
func (r *CategoryResultResolver) StatusLabel() string { return StatusLabel(r.r.Status) }
func (r *CategoryResultResolver) Winners() []*TallyEntryResolver { return entryResolvers(r.r.Winners) }
func (r *CategoryResultResolver) WinnerLabel() string { return WinnerLabel(r.r) }
func (r *CategoryResultResolver) MaxVotes() int32 { return int32(r.r.MaxVotes) }
func (r *CategoryResultResolver) TotalVotes() int32 { return int32(r.r.TotalVotes) }
func (r *CategoryResultResolver) Entries() []*TallyEntryResolver { return entryResolvers(r.r.Entries) }
func (r *CategoryResultResolver) Ranked() []*TallyEntryResolver { return entryResolvers(r.r.Ranked) }

type TallyEntryResolver struct {
	e model.TallyEntry
}

func (r *TallyEntryResolver) NomineeID() graphql.ID { return graphql.ID(r.e.NomineeID) }
func (r *TallyEntryResolver) NomineeName() string { return r.e.NomineeName }
func (r *TallyEntryResolver) VoteCount() int32 { return int32(r.e.VoteCount) }

func entryResolvers(list []model.TallyEntry) []*TallyEntryResolver {
	out := make([]*TallyEntryResolver, len(list))
	for i, e := range list {
		out[i] = &TallyEntryResolver{e: e}
	}
	return out
}

// CastResultResolver 投票响应解析器
type CastResultResolver struct {
	r *model.CastResult
}

func (r *CastResultResolver) Status() string { return enumValue(r.r.Status) }
func (r *CastResultResolver) Message() string { return r.r.Message }

func (r *CastResultResolver) Vote() *VoteResolver {
	if r.r.Vote == nil {
		return nil
	}
	return &VoteResolver{v: r.r.Vote}
}

type VoteResolver struct {
	v *model.Vote
}

func (r *VoteResolver) ID() graphql.ID { return graphql.ID(r.v.ID) }
func (r *VoteResolver) CategoryID() graphql.ID { return graphql.ID(r.v.CategoryID) }
func (r *VoteResolver) NomineeID() graphql.ID { return graphql.ID(r.v.NomineeID) }
func (r *VoteResolver) CreatedAt() string { return formatTime(r.v.CreatedAt) }

// DashboardResolver 管理后台统计解析器
type DashboardResolver struct {
	s model.DashboardStats
}

func (r *DashboardResolver) Categories() int32 { return int32(r.s.Categories) }
func (r *DashboardResolver) Nominees() int32 { return int32(r.s.Nominees) }
func (r *DashboardResolver) Votes() int32 { return int32(r.s.Votes) }

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

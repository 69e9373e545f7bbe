package service

import (
	"sort"

	"github.com/lvdashuaibi/awardvote/internal/model"
)

// CountScope 计票口径
type CountScope string

const (
	// ScopeGlobal 按候选人ID全局计数
	ScopeGlobal CountScope = "global"
	// ScopeCategory 按 (奖项, 候选人) 计数，不同奖项的票互不影响
	ScopeCategory CountScope = "category"
)

// TallyOptions 计票选项，零值为全局计数
type TallyOptions struct {
	Scope CountScope
}

type countKey struct {
	categoryID string
	nomineeID  string
}

// Tally 根据奖项结构和全部投票计算每个奖项的结果，纯函数。
// 指向结构中不存在的候选人的投票不计入任何奖项。
func Tally(structure model.Structure, votes []model.Vote, opts TallyOptions) []model.CategoryResult {
	perCategory := opts.Scope == ScopeCategory

	counts := make(map[countKey]int, len(votes))
	for _, v := range votes {
		k := countKey{nomineeID: v.NomineeID}
		if perCategory {
			k.categoryID = v.CategoryID
		}
		counts[k]++
	}

	results := make([]model.CategoryResult, 0, len(structure.Categories))
	for _, cn := range structure.Categories {
		entries := make([]model.TallyEntry, 0, len(cn.Nominees))
		for _, n := range cn.Nominees {
			k := countKey{nomineeID: n.ID}
			if perCategory {
				k.categoryID = cn.Category.ID
			}
			entries = append(entries, model.TallyEntry{
				NomineeID:   n.ID,
				NomineeName: n.Name,
				VoteCount:   counts[k],
			})
		}
		results = append(results, tallyCategory(cn.Category, entries))
	}
	return results
}

func tallyCategory(c model.Category, entries []model.TallyEntry) model.CategoryResult {
	result := model.CategoryResult{
		CategoryID:   c.ID,
		CategoryName: c.Name,
		Status:       model.StatusPending,
		Winners:      []model.TallyEntry{},
		Entries:      entries,
		Ranked:       []model.TallyEntry{},
	}

	for _, e := range entries {
		result.TotalVotes += e.VoteCount
		if e.VoteCount > result.MaxVotes {
			result.MaxVotes = e.VoteCount
		}
		if e.VoteCount > 0 {
			result.Ranked = append(result.Ranked, e)
		}
	}

	if result.MaxVotes == 0 {
		return result
	}

	for _, e := range entries {
		if e.VoteCount == result.MaxVotes {
			result.Winners = append(result.Winners, e)
		}
	}
	if len(result.Winners) == 1 {
		result.Status = model.StatusWinner
	} else {
		result.Status = model.StatusTie
	}

	sort.SliceStable(result.Ranked, func(i, j int) bool {
		a, b := result.Ranked[i], result.Ranked[j]
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		if a.NomineeName != b.NomineeName {
			return a.NomineeName < b.NomineeName
		}
		return a.NomineeID < b.NomineeID
	})
	return result
}

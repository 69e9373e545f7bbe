package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lvdashuaibi/awardvote/internal/model"
)

// StructureReader 组装奖项结构所需的读取接口
type StructureReader interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListNominees(ctx context.Context) ([]model.Nominee, error)
	ListNominations(ctx context.Context) ([]model.Nomination, error)
}

// Assemble 将奖项、候选人、提名组装为 奖项->候选人 结构。
// 奖项保持输入顺序，候选人按名称(再按ID)排序；
// 同一 (奖项, 候选人) 的重复提名只保留一个，引用不存在实体的提名被忽略。
func Assemble(categories []model.Category, nominees []model.Nominee, nominations []model.Nomination) model.Structure {
	byID := make(map[string]model.Nominee, len(nominees))
	for _, n := range nominees {
		byID[n.ID] = n
	}

	type link struct{ categoryID, nomineeID string }
	seen := make(map[link]bool, len(nominations))
	linked := make(map[string][]model.Nominee, len(categories))
	for _, nm := range nominations {
		n, ok := byID[nm.NomineeID]
		if !ok {
			continue
		}
		k := link{nm.CategoryID, nm.NomineeID}
		if seen[k] {
			continue
		}
		seen[k] = true
		linked[nm.CategoryID] = append(linked[nm.CategoryID], n)
	}

	out := model.Structure{Categories: make([]model.CategoryNominees, 0, len(categories))}
	for _, c := range categories {
		list := linked[c.ID]
		if list == nil {
			list = []model.Nominee{}
		}
		sortNominees(list)
		out.Categories = append(out.Categories, model.CategoryNominees{Category: c, Nominees: list})
	}
	return out
}

func sortNominees(list []model.Nominee) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
}

// LoadStructure 读取并组装奖项结构。
// 奖项读取失败返回 LoadError；候选人或提名读取失败时返回空候选人列表并记录警告。
func LoadStructure(ctx context.Context, reader StructureReader, logger *slog.Logger) (*model.Structure, error) {
	logger = resolveLogger(logger)

	categories, err := reader.ListCategories(ctx)
	if err != nil {
		return nil, &model.LoadError{Resource: "categories", Err: err}
	}

	var warnings []string

	nominees, err := reader.ListNominees(ctx)
	if err != nil {
		logger.Warn("加载候选人失败，奖项将不显示候选人", "err", err)
		warnings = append(warnings, fmt.Sprintf("加载候选人失败: %v", err))
		nominees = nil
	}

	// 候选人加载失败时不再读取提名
	var nominations []model.Nomination
	if err == nil {
		nominations, err = reader.ListNominations(ctx)
		if err != nil {
			logger.Warn("加载提名失败，奖项将不显示候选人", "err", err)
			warnings = append(warnings, fmt.Sprintf("加载提名失败: %v", err))
			nominations = nil
		}
	}

	structure := Assemble(categories, nominees, nominations)
	structure.Warnings = warnings
	return &structure, nil
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

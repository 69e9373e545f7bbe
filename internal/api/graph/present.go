package graph

import (
	"fmt"
	"strings"

	"github.com/lvdashuaibi/awardvote/internal/model"
)

const (
	winnerSeparator = " & "
	noVotesLabel    = "No Votes Cast"
)

// WinnerLabel 获奖者名称，平票时用 " & " 连接
func WinnerLabel(r model.CategoryResult) string {
	if r.Status == model.StatusPending || len(r.Winners) == 0 {
		return noVotesLabel
	}
	names := make([]string, 0, len(r.Winners))
	for _, w := range r.Winners {
		names = append(names, w.NomineeName)
	}
	return strings.Join(names, winnerSeparator)
}

// StatusLabel 计票状态的展示文本
func StatusLabel(status model.TallyStatus) string {
	switch status {
	case model.StatusWinner:
		return "Winner"
	case model.StatusTie:
		return "TIE!"
	default:
		return "Pending"
	}
}

// ChoiceLabel 已投候选人的展示名称，候选人已被删除时显示ID
func ChoiceLabel(c model.BallotChoice) string {
	if c.NomineeName == "" {
		return fmt.Sprintf("Unknown Nominee (%s)", c.NomineeID)
	}
	return c.NomineeName
}

// enumValue 转换为 GraphQL 枚举值
func enumValue[T ~string](v T) string {
	return strings.ToUpper(string(v))
}

package model

// CategoryNominees 奖项及其提名的候选人（按名称排序）
type CategoryNominees struct {
	Category Category  `json:"category"`
	Nominees []Nominee `json:"nominees"`
}

// Structure 奖项-候选人结构
type Structure struct {
	Categories []CategoryNominees `json:"categories"`
	// Warnings 非致命的加载问题
	Warnings []string `json:"warnings,omitempty"`
}

// TallyStatus 奖项计票状态
type TallyStatus string

const (
	StatusPending TallyStatus = "pending"
	StatusWinner  TallyStatus = "winner"
	StatusTie     TallyStatus = "tie"
)

// TallyEntry 单个候选人的计票
type TallyEntry struct {
	NomineeID   string `json:"nomineeId"`
	NomineeName string `json:"nomineeName"`
	VoteCount   int    `json:"voteCount"`
}

// CategoryResult 单个奖项的计票结果
type CategoryResult struct {
	CategoryID   string       `json:"categoryId"`
	CategoryName string       `json:"categoryName"`
	Status       TallyStatus  `json:"status"`
	Winners      []TallyEntry `json:"winners"`
	MaxVotes     int          `json:"maxVotes"`
	TotalVotes   int          `json:"totalVotes"`
	// Entries 按结构顺序排列的全部候选人
	Entries []TallyEntry `json:"entries"`
	// Ranked 得票大于0的候选人，按票数降序
	Ranked []TallyEntry `json:"ranked"`
}

// BallotChoice 投票人在某奖项中的选择
type BallotChoice struct {
	NomineeID   string `json:"nomineeId"`
	NomineeName string `json:"nomineeName"`
}

// VoterBallot 投票人已投的奖项，key为奖项ID
type VoterBallot struct {
	VoterID string                  `json:"voterId"`
	Choices map[string]BallotChoice `json:"choices"`
}

// HasVoted 是否已在该奖项投票
func (b *VoterBallot) HasVoted(categoryID string) bool {
	if b == nil {
		return false
	}
	_, ok := b.Choices[categoryID]
	return ok
}

// BallotCategory 投票页中的奖项状态
type BallotCategory struct {
	CategoryNominees
	HasVoted bool          `json:"hasVoted"`
	Choice   *BallotChoice `json:"choice,omitempty"`
}

// Ballot 投票人的投票页
type Ballot struct {
	Categories []BallotCategory `json:"categories"`
	Warnings   []string         `json:"warnings,omitempty"`
}

// CastStatus 投票结果状态
type CastStatus string

const (
	CastAccepted         CastStatus = "accepted"
	CastAlreadyVoted     CastStatus = "already_voted"
	CastInvalidSelection CastStatus = "invalid_selection"
)

// CastResult 投票操作结果
type CastResult struct {
	Status  CastStatus `json:"status"`
	Message string     `json:"message"`
	Vote    *Vote      `json:"vote,omitempty"`
}

package service

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/lvdashuaibi/awardvote/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	categories  []model.Category
	nominees    []model.Nominee
	nominations []model.Nomination
	votes       []model.Vote
}

func (f *fixture) category(id, name string) {
	f.categories = append(f.categories, model.Category{ID: id, Name: name})
}

func (f *fixture) nominee(id, name string, categoryIDs ...string) {
	f.nominees = append(f.nominees, model.Nominee{ID: id, Name: name})
	for _, cid := range categoryIDs {
		f.nominations = append(f.nominations, model.Nomination{
			ID:         fmt.Sprintf("%s-%s", cid, id),
			CategoryID: cid,
			NomineeID:  id,
		})
	}
}

func (f *fixture) vote(categoryID, nomineeID string, n int) {
	for i := 0; i < n; i++ {
		f.votes = append(f.votes, model.Vote{
			ID:         fmt.Sprintf("v%d", len(f.votes)+1),
			CategoryID: categoryID,
			NomineeID:  nomineeID,
			VoterID:    fmt.Sprintf("u%d", len(f.votes)+1),
		})
	}
}

func (f *fixture) tally() []model.CategoryResult {
	return Tally(Assemble(f.categories, f.nominees, f.nominations), f.votes, TallyOptions{})
}

func resultFor(t *testing.T, results []model.CategoryResult, categoryID string) model.CategoryResult {
	t.Helper()
	for _, r := range results {
		if r.CategoryID == categoryID {
			return r
		}
	}
	t.Fatalf("奖项 %s 不在结果中", categoryID)
	return model.CategoryResult{}
}

func names(entries []model.TallyEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("%s:%d", e.NomineeName, e.VoteCount))
	}
	return out
}

func TestTally_TieBetweenTopNominees(t *testing.T) {
	var f fixture
	f.category("actor", "Best Actor")
	f.nominee("a", "A", "actor")
	f.nominee("b", "B", "actor")
	f.nominee("c", "C", "actor")
	f.vote("actor", "a", 3)
	f.vote("actor", "b", 3)
	f.vote("actor", "c", 1)

	r := resultFor(t, f.tally(), "actor")
	assert.Equal(t, model.StatusTie, r.Status)
	assert.Equal(t, 7, r.TotalVotes)
	assert.Equal(t, 3, r.MaxVotes)
	assert.Equal(t, []string{"A:3", "B:3"}, names(r.Winners))
	assert.Equal(t, []string{"A:3", "B:3", "C:1"}, names(r.Ranked))
}

func TestTally_NoVotesIsPending(t *testing.T) {
	var f fixture
	f.category("film", "Best Film")
	f.nominee("x", "X", "film")
	f.nominee("y", "Y", "film")

	r := resultFor(t, f.tally(), "film")
	assert.Equal(t, model.StatusPending, r.Status)
	assert.Equal(t, 0, r.TotalVotes)
	assert.Equal(t, 0, r.MaxVotes)
	assert.Empty(t, r.Winners)
	assert.Empty(t, r.Ranked)
	assert.Equal(t, []string{"X:0", "Y:0"}, names(r.Entries))
}

func TestTally_CategoryWithoutNominees(t *testing.T) {
	var f fixture
	f.category("empty", "Best Score")

	r := resultFor(t, f.tally(), "empty")
	assert.Equal(t, model.StatusPending, r.Status)
	assert.Equal(t, 0, r.TotalVotes)
	assert.Empty(t, r.Entries)
	assert.Empty(t, r.Winners)
}

func TestTally_SingleWinner(t *testing.T) {
	var f fixture
	f.category("song", "Best Song")
	f.nominee("n", "N", "song")
	f.nominee("m", "M", "song")
	f.vote("song", "n", 2)
	f.vote("song", "m", 1)

	r := resultFor(t, f.tally(), "song")
	assert.Equal(t, model.StatusWinner, r.Status)
	assert.Equal(t, []string{"N:2"}, names(r.Winners))
	assert.Equal(t, []string{"N:2", "M:1"}, names(r.Ranked))
}

func TestTally_VoteForDeletedNomineeExcluded(t *testing.T) {
	var f fixture
	f.category("actor", "Best Actor")
	f.nominee("a", "A", "actor")
	f.vote("actor", "a", 2)
	// 候选人 gone 已被删除，投票仍残留
	f.vote("actor", "gone", 5)

	r := resultFor(t, f.tally(), "actor")
	assert.Equal(t, 2, r.TotalVotes)
	assert.Equal(t, model.StatusWinner, r.Status)
	assert.Equal(t, []string{"A:2"}, names(r.Ranked))
}

func TestTally_NWayTie(t *testing.T) {
	var f fixture
	f.category("c", "Best Costume")
	for _, id := range []string{"d", "b", "a", "c"} {
		f.nominee(id, id, "c")
		f.vote("c", id, 4)
	}

	r := resultFor(t, f.tally(), "c")
	assert.Equal(t, model.StatusTie, r.Status)
	assert.Equal(t, 16, r.TotalVotes)
	assert.Equal(t, []string{"a:4", "b:4", "c:4", "d:4"}, names(r.Winners))
}

func TestTally_GlobalCountAcrossCategories(t *testing.T) {
	var f fixture
	f.category("actor", "Best Actor")
	f.category("lead", "Best Lead")
	f.nominee("a", "A", "actor", "lead")
	f.nominee("b", "B", "lead")
	f.vote("actor", "a", 2)
	f.vote("lead", "b", 1)

	results := f.tally()
	// 全局口径下候选人的票数在所有奖项中相同
	assert.Equal(t, []string{"A:2"}, names(resultFor(t, results, "actor").Entries))
	assert.Equal(t, []string{"A:2", "B:1"}, names(resultFor(t, results, "lead").Entries))

	scoped := Tally(Assemble(f.categories, f.nominees, f.nominations), f.votes, TallyOptions{Scope: ScopeCategory})
	assert.Equal(t, []string{"A:2"}, names(resultFor(t, scoped, "actor").Entries))
	lead := resultFor(t, scoped, "lead")
	assert.Equal(t, []string{"A:0", "B:1"}, names(lead.Entries))
	assert.Equal(t, model.StatusWinner, lead.Status)
	assert.Equal(t, 1, lead.TotalVotes)
}

func TestTally_DuplicateNominationCountedOnce(t *testing.T) {
	var f fixture
	f.category("actor", "Best Actor")
	f.nominee("a", "A", "actor")
	f.nominations = append(f.nominations, model.Nomination{ID: "dup", CategoryID: "actor", NomineeID: "a"})
	f.vote("actor", "a", 3)

	r := resultFor(t, f.tally(), "actor")
	assert.Len(t, r.Entries, 1)
	assert.Equal(t, 3, r.TotalVotes)
}

func randomFixture(rng *rand.Rand) fixture {
	var f fixture
	for c := 0; c < 4; c++ {
		f.category(fmt.Sprintf("c%d", c), fmt.Sprintf("Category %d", c))
	}
	for n := 0; n < 10; n++ {
		id := fmt.Sprintf("n%d", n)
		var cats []string
		for c := 0; c < 4; c++ {
			if rng.Intn(3) == 0 {
				cats = append(cats, fmt.Sprintf("c%d", c))
			}
		}
		f.nominee(id, fmt.Sprintf("Nominee %d", rng.Intn(5)), cats...)
	}
	for _, nm := range f.nominations {
		f.vote(nm.CategoryID, nm.NomineeID, rng.Intn(4))
	}
	return f
}

func shuffled(rng *rand.Rand, f fixture) fixture {
	out := fixture{
		categories:  f.categories,
		nominees:    append([]model.Nominee(nil), f.nominees...),
		nominations: append([]model.Nomination(nil), f.nominations...),
		votes:       append([]model.Vote(nil), f.votes...),
	}
	rng.Shuffle(len(out.nominees), func(i, j int) { out.nominees[i], out.nominees[j] = out.nominees[j], out.nominees[i] })
	rng.Shuffle(len(out.nominations), func(i, j int) {
		out.nominations[i], out.nominations[j] = out.nominations[j], out.nominations[i]
	})
	rng.Shuffle(len(out.votes), func(i, j int) { out.votes[i], out.votes[j] = out.votes[j], out.votes[i] })
	return out
}

func TestTally_DeterministicAndOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		f := randomFixture(rng)

		first, err := json.Marshal(f.tally())
		require.NoError(t, err)
		again, err := json.Marshal(f.tally())
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))

		s := shuffled(rng, f)
		reordered, err := json.Marshal(s.tally())
		require.NoError(t, err)
		assert.JSONEq(t, string(first), string(reordered))
	}
}

func TestTally_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		f := randomFixture(rng)
		structure := Assemble(f.categories, f.nominees, f.nominations)
		results := Tally(structure, f.votes, TallyOptions{})
		require.Len(t, results, len(structure.Categories))

		for idx, r := range results {
			members := make(map[string]bool)
			for _, n := range structure.Categories[idx].Nominees {
				members[n.ID] = true
			}

			// 总票数等于投给该奖项候选人的投票数
			expected := 0
			for _, v := range f.votes {
				if members[v.NomineeID] {
					expected++
				}
			}
			assert.Equal(t, expected, r.TotalVotes)

			// 获胜者恰好是票数等于最大值的候选人
			var atMax []model.TallyEntry
			for _, e := range r.Entries {
				if r.MaxVotes > 0 && e.VoteCount == r.MaxVotes {
					atMax = append(atMax, e)
				}
			}
			assert.ElementsMatch(t, atMax, r.Winners)

			switch {
			case r.MaxVotes == 0:
				assert.Equal(t, model.StatusPending, r.Status)
			case len(r.Winners) == 1:
				assert.Equal(t, model.StatusWinner, r.Status)
			default:
				assert.Equal(t, model.StatusTie, r.Status)
			}

			for j := 1; j < len(r.Ranked); j++ {
				assert.GreaterOrEqual(t, r.Ranked[j-1].VoteCount, r.Ranked[j].VoteCount)
			}
			for _, e := range r.Ranked {
				assert.Positive(t, e.VoteCount)
			}
		}
	}
}

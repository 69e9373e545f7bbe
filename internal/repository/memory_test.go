package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/lvdashuaibi/awardvote/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCategory(t *testing.T, r *MemoryRepository, name string, nominees ...string) (*model.Category, []*model.Nominee) {
	t.Helper()
	ctx := context.Background()
	c, err := r.CreateCategory(ctx, name, nil)
	require.NoError(t, err)

	var out []*model.Nominee
	for _, n := range nominees {
		nominee, err := r.CreateNominee(ctx, n, []string{c.ID})
		require.NoError(t, err)
		out = append(out, nominee)
	}
	return c, out
}

func TestMemoryRepository_InsertVote_Duplicate(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	song, nominees := seedCategory(t, r, "Best Song", "N", "M")

	first, err := r.InsertVote(ctx, model.NewVote{CategoryID: song.ID, NomineeID: nominees[0].ID, VoterID: "u1", VoterEmail: "u1@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = r.InsertVote(ctx, model.NewVote{CategoryID: song.ID, NomineeID: nominees[1].ID, VoterID: "u1", VoterEmail: "u1@example.com"})
	assert.ErrorIs(t, err, model.ErrDuplicateVote)

	votes, err := r.ListVotes(ctx, model.VoteFilter{VoterID: "u1"})
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, nominees[0].ID, votes[0].NomineeID)
}

func TestMemoryRepository_InsertVote_UnknownReference(t *testing.T) {
	r := NewMemoryRepository()
	_, err := r.InsertVote(context.Background(), model.NewVote{CategoryID: "missing", NomineeID: "missing", VoterID: "u1"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemoryRepository_ConcurrentVotes(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	c, nominees := seedCategory(t, r, "Best Actor", "A", "B")

	const attempts = 50
	var (
		wg         sync.WaitGroup
		accepted   atomic.Int32
		duplicates atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.InsertVote(ctx, model.NewVote{
				CategoryID: c.ID,
				NomineeID:  nominees[i%2].ID,
				VoterID:    "u1",
				VoterEmail: "u1@example.com",
			})
			if err == nil {
				accepted.Add(1)
				return
			}
			if assert.ErrorIs(t, err, model.ErrDuplicateVote) {
				duplicates.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
	assert.Equal(t, int32(attempts-1), duplicates.Load())

	votes, err := r.ListVotes(ctx, model.VoteFilter{})
	require.NoError(t, err)
	assert.Len(t, votes, 1)
}

func TestMemoryRepository_ListVotes_Filter(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	c, nominees := seedCategory(t, r, "Best Film", "X")

	for i := 0; i < 3; i++ {
		_, err := r.InsertVote(ctx, model.NewVote{
			CategoryID: c.ID,
			NomineeID:  nominees[0].ID,
			VoterID:    gofakeit.UUID(),
			VoterEmail: gofakeit.Email(),
		})
		require.NoError(t, err)
	}

	all, err := r.ListVotes(ctx, model.VoteFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	one, err := r.ListVotes(ctx, model.VoteFilter{VoterID: all[1].VoterID})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, all[1].ID, one[0].ID)
}

func TestMemoryRepository_CategoryNameUnique(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	a, err := r.CreateCategory(ctx, "Best Actor", nil)
	require.NoError(t, err)
	_, err = r.CreateCategory(ctx, "Best Actor", nil)
	assert.ErrorIs(t, err, model.ErrCategoryExists)

	b, err := r.CreateCategory(ctx, "Best Film", nil)
	require.NoError(t, err)
	_, err = r.UpdateCategory(ctx, b.ID, a.Name, nil)
	assert.ErrorIs(t, err, model.ErrCategoryExists)

	desc := "films of the year"
	updated, err := r.UpdateCategory(ctx, b.ID, "Best Picture", &desc)
	require.NoError(t, err)
	assert.Equal(t, "Best Picture", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, desc, *updated.Description)

	_, err = r.UpdateCategory(ctx, "missing", "x", nil)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemoryRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	actor, actorNominees := seedCategory(t, r, "Best Actor", "A", "B")
	film, filmNominees := seedCategory(t, r, "Best Film", "X")

	_, err := r.InsertVote(ctx, model.NewVote{CategoryID: actor.ID, NomineeID: actorNominees[0].ID, VoterID: "u1"})
	require.NoError(t, err)
	_, err = r.InsertVote(ctx, model.NewVote{CategoryID: actor.ID, NomineeID: actorNominees[1].ID, VoterID: "u2"})
	require.NoError(t, err)
	_, err = r.InsertVote(ctx, model.NewVote{CategoryID: film.ID, NomineeID: filmNominees[0].ID, VoterID: "u1"})
	require.NoError(t, err)

	require.NoError(t, r.DeleteNominee(ctx, actorNominees[0].ID))
	stats, err := r.CountEntities(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DashboardStats{Categories: 2, Nominees: 2, Votes: 2}, stats)

	require.NoError(t, r.DeleteCategory(ctx, actor.ID))
	nominations, err := r.ListNominations(ctx)
	require.NoError(t, err)
	require.Len(t, nominations, 1)
	assert.Equal(t, film.ID, nominations[0].CategoryID)

	votes, err := r.ListVotes(ctx, model.VoteFilter{})
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, film.ID, votes[0].CategoryID)

	assert.ErrorIs(t, r.DeleteCategory(ctx, actor.ID), model.ErrNotFound)
	assert.ErrorIs(t, r.DeleteNominee(ctx, actorNominees[0].ID), model.ErrNotFound)
}

func TestMemoryRepository_LinkNominee(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	actor, nominees := seedCategory(t, r, "Best Actor", "A")
	film, _ := seedCategory(t, r, "Best Film")

	first, err := r.LinkNominee(ctx, film.ID, nominees[0].ID)
	require.NoError(t, err)
	again, err := r.LinkNominee(ctx, film.ID, nominees[0].ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	nominations, err := r.ListNominations(ctx)
	require.NoError(t, err)
	assert.Len(t, nominations, 2)

	require.NoError(t, r.UnlinkNominee(ctx, actor.ID, nominees[0].ID))
	assert.ErrorIs(t, r.UnlinkNominee(ctx, actor.ID, nominees[0].ID), model.ErrNotFound)

	_, err = r.LinkNominee(ctx, "missing", nominees[0].ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemoryRepository_CreateNominee_UnknownCategory(t *testing.T) {
	r := NewMemoryRepository()
	_, err := r.CreateNominee(context.Background(), gofakeit.Name(), []string{"missing"})
	assert.ErrorIs(t, err, model.ErrNotFound)

	nominees, err := r.ListNominees(context.Background())
	require.NoError(t, err)
	assert.Empty(t, nominees)
}

func TestMemoryRepository_SaveVoteLog_Idempotent(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	l := &model.VoteLog{VoteID: "v1", VoterID: "u1", CategoryID: "c1", NomineeID: "n1"}

	require.NoError(t, r.SaveVoteLog(ctx, l))
	require.NoError(t, r.SaveVoteLog(ctx, l))

	logs := r.VoteLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, int64(1), logs[0].ID)
}

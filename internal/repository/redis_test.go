package repository

import (
	"context"
	"testing"
	"time"

	"github.com/lvdashuaibi/awardvote/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBallotKey(t *testing.T) {
	assert.Equal(t, "award:ballot:voter:u1", BallotKey("u1"))
}

func TestMemoryBallotCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryBallotCache(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	_, found, err := cache.GetBallot(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, found)

	ballot := &model.VoterBallot{
		VoterID: "u1",
		Choices: map[string]model.BallotChoice{"c1": {NomineeID: "n1", NomineeName: "A"}},
	}
	require.NoError(t, cache.SetBallot(ctx, ballot))

	// 修改调用方的map不影响缓存内容
	ballot.Choices["c2"] = model.BallotChoice{NomineeID: "n2"}

	got, found, err := cache.GetBallot(ctx, "u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.HasVoted("c1"))
	assert.False(t, got.HasVoted("c2"))

	now = now.Add(2 * time.Minute)
	_, found, err = cache.GetBallot(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, found, "过期后应视为未命中")

	require.NoError(t, cache.SetBallot(ctx, got))
	require.NoError(t, cache.DeleteBallot(ctx, "u1"))
	_, found, err = cache.GetBallot(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, found)
}

package feed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/odinenx/live-rooms/internal/room"
	"github.com/odinenx/live-rooms/internal/room/plan"
	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

func scorePayload(t *testing.T, su events.ScoreUpdate) []byte {
	t.Helper()
	b, err := json.Marshal(su)
	require.NoError(t, err)
	return b
}

func TestProcessOneAppliesUpdate(t *testing.T) {
	reg := room.NewRegistry(zap.NewNop())
	g := reg.CreateRoom(12345, "Flamengo", "Palmeiras")
	c := NewScoreConsumer(zap.NewNop(), reg, nil, nil)

	err := c.processOne(context.Background(), scorePayload(t, events.ScoreUpdate{
		FixtureID: 12345,
		HomeScore: 1,
		Minute:    34,
		Scorer:    "Gabigol",
	}))
	require.NoError(t, err)

	home, away := g.Score()
	assert.Equal(t, 1, home)
	assert.Equal(t, 0, away)
	assert.Equal(t, 34, g.Minute())
}

func TestProcessOneFinishesRoomAndSettles(t *testing.T) {
	reg := room.NewRegistry(zap.NewNop())
	g := reg.CreateRoom(7, "Home", "Away")
	u, err := reg.AddUser(g.ID(), "B", plan.Pro, []room.PickRequest{
		{BetType: "match-result", Outcome: "home", Price: 1.85},
	})
	require.NoError(t, err)
	c := NewScoreConsumer(zap.NewNop(), reg, nil, nil)

	require.NoError(t, c.processOne(context.Background(), scorePayload(t, events.ScoreUpdate{
		FixtureID: 7, HomeScore: 2, AwayScore: 0, Minute: 90, Finished: true,
	})))

	assert.Equal(t, room.StatusFinished, g.Status())
	assert.Equal(t, room.OddWon, u.Odds[0].Status)
}

func TestProcessOneUnknownFixtureIsSkipped(t *testing.T) {
	reg := room.NewRegistry(zap.NewNop())
	c := NewScoreConsumer(zap.NewNop(), reg, nil, nil)

	err := c.processOne(context.Background(), scorePayload(t, events.ScoreUpdate{
		FixtureID: 999, HomeScore: 1,
	}))
	assert.NoError(t, err)
}

func TestProcessOneRejectedTransitionReturnsError(t *testing.T) {
	reg := room.NewRegistry(zap.NewNop())
	g := reg.CreateRoom(5, "Home", "Away")
	c := NewScoreConsumer(zap.NewNop(), reg, nil, nil)

	require.NoError(t, c.processOne(context.Background(), scorePayload(t, events.ScoreUpdate{
		FixtureID: 5, HomeScore: 2, AwayScore: 1, Minute: 60,
	})))

	err := c.processOne(context.Background(), scorePayload(t, events.ScoreUpdate{
		FixtureID: 5, HomeScore: 1, AwayScore: 1, Minute: 70,
	}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, room.ErrInvalidScoreTransition))

	home, away := g.Score()
	assert.Equal(t, 2, home)
	assert.Equal(t, 1, away)
}

func TestProcessOneBadPayload(t *testing.T) {
	c := NewScoreConsumer(zap.NewNop(), room.NewRegistry(zap.NewNop()), nil, nil)
	err := c.processOne(context.Background(), []byte("not json"))
	assert.Error(t, err)
}

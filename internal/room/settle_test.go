package room

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odinenx/live-rooms/internal/room/plan"
	"github.com/odinenx/live-rooms/pkg/contracts/channels"
	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

func pendingCount(u *RoomUser) int {
	n := 0
	for _, o := range u.Odds {
		if o.Status == OddPending {
			n++
		}
	}
	return n
}

func TestOverUnderSettlesWhenLineIsPassed(t *testing.T) {
	reg := newTestRegistry()
	g := reg.CreateRoom(1, "Home", "Away")
	a, err := reg.AddUser(g.ID(), "A", plan.Elite, []PickRequest{
		{BetType: "over-under", Outcome: "over-2.5", Price: 2.10},
	})
	require.NoError(t, err)

	var oddWonCelebrations []events.CelebrationRecord
	reg.Bus().Subscribe(channels.Celebrations(g.ID()), func(ev events.RealtimeEvent) {
		rec := ev.NewRecord.(events.CelebrationRecord)
		if rec.Cause == "odd-won" {
			oddWonCelebrations = append(oddWonCelebrations, rec)
		}
	})

	res, err := reg.ApplyScoreUpdate(g.ID(), 1, 0, 34, "Gabigol")
	require.NoError(t, err)
	assert.Empty(t, res.Settled)
	assert.Equal(t, OddPending, a.Odds[0].Status)

	res, err = reg.ApplyScoreUpdate(g.ID(), 2, 0, 45, "Arrascaeta")
	require.NoError(t, err)
	assert.Empty(t, res.Settled)

	// total 3 > 2.5: decide neste instante
	res, err = reg.ApplyScoreUpdate(g.ID(), 2, 1, 67, "Endrick")
	require.NoError(t, err)
	require.Len(t, res.Settled, 1)
	assert.Equal(t, OddWon, res.Settled[0].Status)
	assert.Equal(t, OddWon, a.Odds[0].Status)

	// exatamente uma celebração de odd-won, com o efeito do plano elite
	require.Len(t, oddWonCelebrations, 1)
	assert.Equal(t, a.ID, oddWonCelebrations[0].UserID)
	assert.Equal(t, "full-custom", oddWonCelebrations[0].Effect)
	assert.Equal(t, ScopeUser, oddWonCelebrations[0].Scope)

	// estado terminal: updates seguintes não reliquidam
	res, err = reg.ApplyScoreUpdate(g.ID(), 3, 1, 80, "")
	require.NoError(t, err)
	assert.Empty(t, res.Settled)
	assert.Equal(t, OddWon, a.Odds[0].Status)
	assert.Len(t, oddWonCelebrations, 1)
}

func TestOverAndUnderAreDecidedTogether(t *testing.T) {
	reg := newTestRegistry()
	g := reg.CreateRoom(1, "Home", "Away")
	over, _ := reg.AddUser(g.ID(), "Over", plan.Basic, []PickRequest{
		{BetType: "over-under", Outcome: "over-1.5", Price: 1.60},
	})
	under, _ := reg.AddUser(g.ID(), "Under", plan.Basic, []PickRequest{
		{BetType: "over-under", Outcome: "under-1.5", Price: 2.30},
	})

	res, err := reg.ApplyScoreUpdate(g.ID(), 1, 1, 50, "")
	require.NoError(t, err)
	require.Len(t, res.Settled, 2)
	assert.Equal(t, OddWon, over.Odds[0].Status)
	assert.Equal(t, OddLost, under.Odds[0].Status)
}

func TestUnderWinsOnFinishWhenLineHolds(t *testing.T) {
	reg := newTestRegistry()
	g := reg.CreateRoom(1, "Home", "Away")
	u, _ := reg.AddUser(g.ID(), "U", plan.Free, []PickRequest{
		{BetType: "over-under", Outcome: "under-2.5", Price: 1.85},
	})

	_, err := reg.ApplyScoreUpdate(g.ID(), 1, 0, 70, "")
	require.NoError(t, err)
	assert.Equal(t, OddPending, u.Odds[0].Status)

	res, err := reg.SetStatus(g.ID(), StatusFinished)
	require.NoError(t, err)
	require.Len(t, res.Settled, 1)
	assert.Equal(t, OddWon, u.Odds[0].Status)
}

func TestMatchResultHomePickLosesWithFinalScore(t *testing.T) {
	// cenário: pick match-result/home, placar final 1-2 -> lost
	reg := newTestRegistry()
	g := reg.CreateRoom(1, "Home", "Away")
	b, _ := reg.AddUser(g.ID(), "B", plan.Pro, []PickRequest{
		{BetType: "match-result", Outcome: "home", Price: 1.85},
	})

	_, err := reg.ApplyScoreUpdate(g.ID(), 1, 0, 20, "")
	require.NoError(t, err)
	// casa na frente não confirma nada: vitória só no apito final
	assert.Equal(t, OddPending, b.Odds[0].Status)

	_, err = reg.ApplyScoreUpdate(g.ID(), 1, 2, 75, "")
	require.NoError(t, err)

	_, err = reg.SetStatus(g.ID(), StatusFinished)
	require.NoError(t, err)
	assert.Equal(t, OddLost, b.Odds[0].Status)
}

func TestMatchResultLostEarlyWhenOpponentLeads(t *testing.T) {
	reg := newTestRegistry()
	g := reg.CreateRoom(1, "Home", "Away")
	b, _ := reg.AddUser(g.ID(), "B", plan.Pro, []PickRequest{
		{BetType: "match-result", Outcome: "home", Price: 1.85},
	})

	res, err := reg.ApplyScoreUpdate(g.ID(), 0, 1, 30, "")
	require.NoError(t, err)
	require.Len(t, res.Settled, 1)
	assert.Equal(t, OddLost, b.Odds[0].Status)
}

func TestMatchResultWinsOnlyAtFinish(t *testing.T) {
	reg := newTestRegistry()
	g := reg.CreateRoom(1, "Home", "Away")
	b, _ := reg.AddUser(g.ID(), "B", plan.Elite, []PickRequest{
		{BetType: "match-result", Outcome: "home", Price: 1.85},
	})

	_, err := reg.ApplyScoreUpdate(g.ID(), 3, 0, 60, "")
	require.NoError(t, err)
	assert.Equal(t, OddPending, b.Odds[0].Status)

	res, err := reg.SetStatus(g.ID(), StatusFinished)
	require.NoError(t, err)
	require.Len(t, res.Settled, 1)
	assert.Equal(t, OddWon, b.Odds[0].Status)
}

func TestDrawPickNeverLosesBeforeFinish(t *testing.T) {
	reg := newTestRegistry()
	g := reg.CreateRoom(1, "Home", "Away")
	m, _ := reg.AddUser(g.ID(), "M", plan.Pro, []PickRequest{
		{BetType: "match-result", Outcome: "draw", Price: 3.40},
	})

	_, err := reg.ApplyScoreUpdate(g.ID(), 2, 0, 55, "")
	require.NoError(t, err)
	assert.Equal(t, OddPending, m.Odds[0].Status)

	_, err = reg.ApplyScoreUpdate(g.ID(), 2, 2, 88, "")
	require.NoError(t, err)
	assert.Equal(t, OddPending, m.Odds[0].Status)

	_, err = reg.SetStatus(g.ID(), StatusFinished)
	require.NoError(t, err)
	assert.Equal(t, OddWon, m.Odds[0].Status)
}

func TestBothTeamsToScore(t *testing.T) {
	reg := newTestRegistry()
	g := reg.CreateRoom(1, "Home", "Away")
	yes, _ := reg.AddUser(g.ID(), "Yes", plan.Basic, []PickRequest{
		{BetType: "both-teams-to-score", Outcome: "yes", Price: 1.75},
	})
	no, _ := reg.AddUser(g.ID(), "No", plan.Basic, []PickRequest{
		{BetType: "both-teams-to-score", Outcome: "no", Price: 2.00},
	})

	_, err := reg.ApplyScoreUpdate(g.ID(), 1, 0, 10, "")
	require.NoError(t, err)
	assert.Equal(t, OddPending, yes.Odds[0].Status)
	assert.Equal(t, OddPending, no.Odds[0].Status)

	// segundo time marca: decidido nos dois lados
	_, err = reg.ApplyScoreUpdate(g.ID(), 1, 1, 40, "")
	require.NoError(t, err)
	assert.Equal(t, OddWon, yes.Odds[0].Status)
	assert.Equal(t, OddLost, no.Odds[0].Status)
}

func TestBTTSNoWinsOnFinish(t *testing.T) {
	reg := newTestRegistry()
	g := reg.CreateRoom(1, "Home", "Away")
	no, _ := reg.AddUser(g.ID(), "No", plan.Free, []PickRequest{
		{BetType: "both-teams-to-score", Outcome: "no", Price: 2.00},
	})

	_, err := reg.ApplyScoreUpdate(g.ID(), 2, 0, 80, "")
	require.NoError(t, err)
	assert.Equal(t, OddPending, no.Odds[0].Status)

	_, err = reg.SetStatus(g.ID(), StatusFinished)
	require.NoError(t, err)
	assert.Equal(t, OddWon, no.Odds[0].Status)
}

func TestInvalidScoreTransitionLeavesStateUntouched(t *testing.T) {
	reg := newTestRegistry()
	g := reg.CreateRoom(1, "Home", "Away")
	u, _ := reg.AddUser(g.ID(), "U", plan.Pro, []PickRequest{
		{BetType: "over-under", Outcome: "over-0.5", Price: 1.20},
	})

	_, err := reg.ApplyScoreUpdate(g.ID(), 2, 1, 60, "")
	require.NoError(t, err)

	// regressão de placar
	_, err = reg.ApplyScoreUpdate(g.ID(), 1, 1, 65, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidScoreTransition))

	home, away := g.Score()
	assert.Equal(t, 2, home)
	assert.Equal(t, 1, away)
	assert.Equal(t, 60, g.Minute())

	// rejeitar duas vezes seguidas produz o mesmo estado
	_, err = reg.ApplyScoreUpdate(g.ID(), 1, 1, 65, "")
	require.Error(t, err)
	home, away = g.Score()
	assert.Equal(t, 2, home)
	assert.Equal(t, 1, away)

	// regressão de minuto também é rejeitada
	_, err = reg.ApplyScoreUpdate(g.ID(), 2, 1, 50, "")
	assert.True(t, errors.Is(err, ErrInvalidScoreTransition))

	assert.Equal(t, 0, pendingCount(u)) // over-0.5 liquidado no 2-1
}

func TestRepeatedIdenticalUpdateIsAcceptedWithoutEvents(t *testing.T) {
	reg := newTestRegistry()
	g := reg.CreateRoom(1, "Home", "Away")

	_, err := reg.ApplyScoreUpdate(g.ID(), 1, 0, 30, "")
	require.NoError(t, err)

	var n int
	reg.Bus().Subscribe(channels.Score(g.ID()), func(events.RealtimeEvent) { n++ })

	res, err := reg.ApplyScoreUpdate(g.ID(), 1, 0, 30, "")
	require.NoError(t, err)
	assert.False(t, res.GoalScored)
	assert.Empty(t, res.Settled)
	assert.Zero(t, n)
}

func TestScoreUpdateEventCounts(t *testing.T) {
	// um update aceito produz um evento de placar e um evento de odd por
	// pick que mudou de estado naquela chamada
	reg := newTestRegistry()
	g := reg.CreateRoom(1, "Home", "Away")
	reg.AddUser(g.ID(), "A", plan.Elite, []PickRequest{
		{BetType: "over-under", Outcome: "over-0.5", Price: 1.30},
		{BetType: "both-teams-to-score", Outcome: "yes", Price: 1.75},
	})
	reg.AddUser(g.ID(), "B", plan.Free, []PickRequest{
		{BetType: "over-under", Outcome: "under-0.5", Price: 3.10},
	})

	var scoreEvents, oddEvents int
	reg.Bus().Subscribe(channels.Score(g.ID()), func(events.RealtimeEvent) { scoreEvents++ })
	reg.Bus().Subscribe(channels.Odds(g.ID()), func(events.RealtimeEvent) { oddEvents++ })

	res, err := reg.ApplyScoreUpdate(g.ID(), 1, 0, 15, "")
	require.NoError(t, err)

	assert.Equal(t, 1, scoreEvents)
	// over-0.5 ganhou, under-0.5 perdeu; btts segue pendente
	assert.Equal(t, 2, oddEvents)
	assert.Len(t, res.Settled, 2)
}

func TestGoalFiresCelebrationForEveryOnlineUser(t *testing.T) {
	reg := newTestRegistry()
	g := reg.CreateRoom(1, "Home", "Away")
	reg.AddUser(g.ID(), "Elite", plan.Elite, nil)
	reg.AddUser(g.ID(), "Free", plan.Free, nil)
	off, _ := reg.AddUser(g.ID(), "Off", plan.Pro, nil)
	require.NoError(t, reg.SetUserOnline(g.ID(), off.ID, false))

	var goals []events.CelebrationRecord
	reg.Bus().Subscribe(channels.Celebrations(g.ID()), func(ev events.RealtimeEvent) {
		rec := ev.NewRecord.(events.CelebrationRecord)
		if rec.Cause == "goal" {
			goals = append(goals, rec)
		}
	})

	_, err := reg.ApplyScoreUpdate(g.ID(), 1, 0, 12, "Pedro")
	require.NoError(t, err)

	require.Len(t, goals, 2) // só os online
	effects := map[string]bool{}
	for _, c := range goals {
		effects[c.Effect] = true
		assert.Equal(t, ScopeRoom, c.Scope)
	}
	assert.True(t, effects["full-custom"])
	assert.True(t, effects["simple-confetti"])
}

func TestGoalAppendsSystemMessage(t *testing.T) {
	reg := newTestRegistry()
	g := reg.CreateRoom(1, "Flamengo", "Palmeiras")

	_, err := reg.ApplyScoreUpdate(g.ID(), 1, 0, 34, "Gabigol")
	require.NoError(t, err)

	msgs := g.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, KindSystem, msgs[0].Kind)
	assert.Contains(t, msgs[0].Content, "GOAL!")
	assert.Contains(t, msgs[0].Content, "Flamengo")
	assert.Contains(t, msgs[0].Content, "Gabigol")
}

func TestFinishIsIdempotent(t *testing.T) {
	reg := newTestRegistry()
	g := reg.CreateRoom(1, "Home", "Away")
	u, _ := reg.AddUser(g.ID(), "U", plan.Pro, []PickRequest{
		{BetType: "match-result", Outcome: "draw", Price: 3.00},
	})

	res, err := reg.SetStatus(g.ID(), StatusFinished)
	require.NoError(t, err)
	require.Len(t, res.Settled, 1)
	assert.Equal(t, OddWon, u.Odds[0].Status)

	// repetir o finish não reliquida nem emite de novo
	res, err = reg.SetStatus(g.ID(), StatusFinished)
	require.NoError(t, err)
	assert.Empty(t, res.Settled)
}

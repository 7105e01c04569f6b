package entity

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-battleroom/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActiveSession(t *testing.T) *Session {
	t.Helper()

	session := NewSession("room")
	for _, id := range []string{"p1", "p2"} {
		session.Roster[id] = NewParticipant(id, session.NextOrder(), "")
	}
	session.Start()

	return session
}

func TestNewSession(t *testing.T) {
	// Given: a new session
	session := NewSession("123")

	// Then: it waits for participants with turn 1
	assert.Equal(t, PhaseWaiting, session.Phase)
	assert.Equal(t, 1, session.Turn)
	assert.True(t, session.Outcome.IsNone())
	assert.False(t, session.IsLocked())
	assert.False(t, session.IsDisposable())
	require.NoError(t, session.Validate())
}

func TestSession_Snapshot(t *testing.T) {
	t.Run("Waiting session", func(t *testing.T) {
		snapshot := NewSession("123").Snapshot()

		assert.Equal(t, Snapshot{Turn: 1, WaitingForOpponent: true}, snapshot)
	})

	t.Run("Won session carries winner and line", func(t *testing.T) {
		// Given: an active session won by seat 1 on the top row
		session := newActiveSession(t)
		session.Board = NewBoard([BoardSize]Mark{MarkA, MarkA, MarkA, MarkB, MarkB, Empty, Empty, Empty, Empty})
		session.Turn = 2
		session.Finish(Outcome{Kind: OutcomeWin, Winner: 1, Line: 3})

		// When: taking a snapshot
		snapshot := session.Snapshot()

		// Then: the wire fields reflect the win
		assert.Equal(t, Snapshot{
			Board:    [BoardSize]int{1, 1, 1, 2, 2, 0, 0, 0, 0},
			Turn:     2,
			Started:  true,
			Finished: true,
			Winner:   1,
			WinType:  3,
		}, snapshot)
	})

	t.Run("Forfeit sets opponentDeserted", func(t *testing.T) {
		session := newActiveSession(t)
		session.Finish(Outcome{Kind: OutcomeForfeit, Winner: 2})

		snapshot := session.Snapshot()

		assert.True(t, snapshot.OpponentDeserted)
		assert.True(t, snapshot.Finished)
		assert.Equal(t, 2, snapshot.Winner)
		assert.Zero(t, snapshot.WinType)
	})
}

func TestSession_Finish(t *testing.T) {
	// Given: a finished session
	session := newActiveSession(t)
	session.Finish(Outcome{Kind: OutcomeDraw})

	// When: finishing again with another outcome
	session.Finish(Outcome{Kind: OutcomeForfeit, Winner: 1})

	// Then: the first outcome stays
	assert.Equal(t, Outcome{Kind: OutcomeDraw}, session.Outcome)
}

func TestSession_RefreshPhase(t *testing.T) {
	session := newActiveSession(t)

	session.Roster["p2"].Connected = false
	session.RefreshPhase()
	assert.Equal(t, PhaseSuspended, session.Phase)

	session.Roster["p2"].Connected = true
	session.RefreshPhase()
	assert.Equal(t, PhaseActive, session.Phase)
}

func TestSession_Validate(t *testing.T) {
	t.Run("Active session is valid", func(t *testing.T) {
		require.NoError(t, newActiveSession(t).Validate())
	})

	t.Run("Two participants holding the same order", func(t *testing.T) {
		session := newActiveSession(t)
		session.Roster["p2"].Order = 1

		require.ErrorIs(t, session.Validate(), apperror.ErrInvariantViolation)
	})

	t.Run("Active with a single participant", func(t *testing.T) {
		session := newActiveSession(t)
		delete(session.Roster, "p2")

		require.ErrorIs(t, session.Validate(), apperror.ErrInvariantViolation)
	})

	t.Run("Finished without outcome", func(t *testing.T) {
		session := newActiveSession(t)
		session.Phase = PhaseFinished

		require.ErrorIs(t, session.Validate(), apperror.ErrInvariantViolation)
	})
}

func TestSession_IsDisposable(t *testing.T) {
	t.Run("Finished with empty roster", func(t *testing.T) {
		session := newActiveSession(t)
		session.Finish(Outcome{Kind: OutcomeForfeit, Winner: 1})
		assert.False(t, session.IsDisposable())

		clear(session.Roster)
		assert.True(t, session.IsDisposable())
	})

	t.Run("Waiting room abandoned by its only participant", func(t *testing.T) {
		session := NewSession("room")
		session.Roster["p1"] = NewParticipant("p1", session.NextOrder(), "")
		delete(session.Roster, "p1")

		assert.True(t, session.IsDisposable())
	})
}

func TestSession_View(t *testing.T) {
	session := newActiveSession(t)

	view := session.View()

	assert.Equal(t, "room", view.RoomID)
	require.Len(t, view.Players, 2)
	assert.Equal(t, 1, view.Players[0].Order)
	assert.Equal(t, 2, view.Players[1].Order)
	assert.Equal(t, DefaultParticipantName, view.Players[0].Name)
}

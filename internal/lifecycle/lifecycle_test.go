package lifecycle

import (
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-battleroom/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-battleroom/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expiry struct {
	participantID string
	generation    uint64
}

func newLifecycle(t *testing.T, grace time.Duration) (*Lifecycle, <-chan expiry) {
	t.Helper()

	expired := make(chan expiry, 4)
	lc := New(entity.NewSession("room"), grace, func(participantID string, generation uint64) {
		expired <- expiry{participantID: participantID, generation: generation}
	})
	t.Cleanup(lc.Stop)

	return lc, expired
}

func newStartedLifecycle(t *testing.T, grace time.Duration) (*Lifecycle, <-chan expiry) {
	t.Helper()

	lc, expired := newLifecycle(t, grace)
	_, err := lc.Admit("p1", "Alice")
	require.NoError(t, err)
	_, err = lc.Admit("p2", "Bob")
	require.NoError(t, err)

	return lc, expired
}

func waitExpiry(t *testing.T, expired <-chan expiry) expiry {
	t.Helper()

	select {
	case e := <-expired:
		return e
	case <-time.After(time.Second):
		t.Fatal("grace window did not elapse")
		return expiry{}
	}
}

func TestLifecycle_Admit(t *testing.T) {
	t.Run("Seats participants in arrival order and starts when full", func(t *testing.T) {
		// Given: an empty session
		lc, _ := newLifecycle(t, time.Minute)

		// When: the first participant joins
		first, err := lc.Admit("p1", "Alice")
		require.NoError(t, err)

		// Then: it gets order 1 and the session keeps waiting
		assert.Equal(t, 1, first.Order)
		assert.True(t, first.Connected)
		assert.Equal(t, entity.PhaseWaiting, lc.Session().Phase)

		// When: the second participant joins
		second, err := lc.Admit("p2", "")
		require.NoError(t, err)

		// Then: it gets order 2, the default name, and the session is active and locked
		assert.Equal(t, 2, second.Order)
		assert.Equal(t, entity.DefaultParticipantName, second.Name)
		assert.Equal(t, entity.PhaseActive, lc.Session().Phase)
		assert.True(t, lc.Session().IsLocked())
		assert.True(t, lc.Session().Snapshot().Started)
		assert.False(t, lc.Session().Snapshot().WaitingForOpponent)
	})

	t.Run("Error on full session", func(t *testing.T) {
		lc, _ := newStartedLifecycle(t, time.Minute)

		_, err := lc.Admit("p3", "Eve")

		require.ErrorIs(t, err, apperror.ErrSessionFull)
		assert.Len(t, lc.Session().Roster, 2)
	})

	t.Run("Error on duplicate identity", func(t *testing.T) {
		lc, _ := newLifecycle(t, time.Minute)
		_, err := lc.Admit("p1", "Alice")
		require.NoError(t, err)

		_, err = lc.Admit("p1", "Alice")

		require.ErrorIs(t, err, apperror.ErrAlreadyJoined)
		assert.Len(t, lc.Session().Roster, 1)
	})

	t.Run("Locked session stays closed after a departure", func(t *testing.T) {
		lc, _ := newStartedLifecycle(t, time.Minute)
		require.NoError(t, lc.DepartGraceful("p2"))

		_, err := lc.Admit("p3", "Eve")

		require.ErrorIs(t, err, apperror.ErrSessionFull)
	})
}

func TestLifecycle_DepartGraceful(t *testing.T) {
	t.Run("Leaving an active game forfeits it", func(t *testing.T) {
		// Given: an active session
		lc, _ := newStartedLifecycle(t, time.Minute)

		// When: order 1 leaves with consent
		require.NoError(t, lc.DepartGraceful("p1"))

		// Then: order 2 wins by forfeit and order 1 is gone
		session := lc.Session()
		assert.Equal(t, entity.PhaseFinished, session.Phase)
		assert.Equal(t, entity.Outcome{Kind: entity.OutcomeForfeit, Winner: 2}, session.Outcome)
		_, ok := session.Participant("p1")
		assert.False(t, ok)
		assert.True(t, session.Snapshot().OpponentDeserted)
	})

	t.Run("Leaving a waiting session only removes the participant", func(t *testing.T) {
		lc, _ := newLifecycle(t, time.Minute)
		_, err := lc.Admit("p1", "Alice")
		require.NoError(t, err)

		require.NoError(t, lc.DepartGraceful("p1"))

		assert.Equal(t, entity.PhaseWaiting, lc.Session().Phase)
		assert.True(t, lc.Session().Outcome.IsNone())
		assert.True(t, lc.Session().IsDisposable())
	})

	t.Run("Leaving a finished game keeps the outcome", func(t *testing.T) {
		lc, _ := newStartedLifecycle(t, time.Minute)
		lc.Session().Finish(entity.Outcome{Kind: entity.OutcomeWin, Winner: 1, Line: 3})

		require.NoError(t, lc.DepartGraceful("p1"))
		require.NoError(t, lc.DepartGraceful("p2"))

		assert.Equal(t, entity.Outcome{Kind: entity.OutcomeWin, Winner: 1, Line: 3}, lc.Session().Outcome)
		assert.True(t, lc.Session().IsDisposable())
	})

	t.Run("Error on unknown participant", func(t *testing.T) {
		lc, _ := newStartedLifecycle(t, time.Minute)

		require.ErrorIs(t, lc.DepartGraceful("ghost"), apperror.ErrUnknownParticipant)
		assert.Equal(t, entity.PhaseActive, lc.Session().Phase)
	})

	t.Run("Forfeit goes to the remaining participant while the other is in its window", func(t *testing.T) {
		// Given: order 2 dropped and is inside its grace window
		lc, expired := newStartedLifecycle(t, 10*time.Millisecond)
		require.NoError(t, lc.DepartUngraceful("p2"))

		// When: order 1 leaves with consent
		require.NoError(t, lc.DepartGraceful("p1"))

		// Then: order 2 wins at once
		assert.Equal(t, entity.Outcome{Kind: entity.OutcomeForfeit, Winner: 2}, lc.Session().Outcome)

		// And: order 2's expiry later only cleans up
		e := waitExpiry(t, expired)
		assert.True(t, lc.Expire(e.participantID, e.generation))
		assert.Equal(t, entity.Outcome{Kind: entity.OutcomeForfeit, Winner: 2}, lc.Session().Outcome)
		assert.Empty(t, lc.Session().Roster)
	})
}

func TestLifecycle_GraceWindow(t *testing.T) {
	t.Run("Reconnect within the window restores the participant", func(t *testing.T) {
		// Given: an active session where order 2 dropped
		lc, expired := newStartedLifecycle(t, 20*time.Millisecond)
		require.NoError(t, lc.DepartUngraceful("p2"))

		participant, _ := lc.Session().Participant("p2")
		assert.False(t, participant.Connected)
		assert.Equal(t, entity.PhaseSuspended, lc.Session().Phase)
		assert.Equal(t, 1, lc.PendingWindows())

		// When: order 2 reconnects
		require.NoError(t, lc.Reconnect("p2"))

		// Then: it is connected and nothing else changed
		assert.True(t, participant.Connected)
		assert.Equal(t, entity.PhaseActive, lc.Session().Phase)
		assert.True(t, lc.Session().Outcome.IsNone())
		assert.Zero(t, lc.PendingWindows())

		// And: no expiry fires
		select {
		case <-expired:
			t.Fatal("cancelled window fired")
		case <-time.After(60 * time.Millisecond):
		}
	})

	t.Run("Expiry forfeits the game exactly once", func(t *testing.T) {
		// Given: order 1 dropped from an active session
		lc, expired := newStartedLifecycle(t, 10*time.Millisecond)
		require.NoError(t, lc.DepartUngraceful("p1"))

		// When: the window elapses
		e := waitExpiry(t, expired)
		require.Equal(t, "p1", e.participantID)
		resolved := lc.Expire(e.participantID, e.generation)

		// Then: order 2 wins by forfeit and order 1 is removed
		assert.True(t, resolved)
		assert.Equal(t, entity.PhaseFinished, lc.Session().Phase)
		assert.Equal(t, entity.Outcome{Kind: entity.OutcomeForfeit, Winner: 2}, lc.Session().Outcome)
		_, ok := lc.Session().Participant("p1")
		assert.False(t, ok)

		// And: resolving again is a no-op
		assert.False(t, lc.Expire(e.participantID, e.generation))
	})

	t.Run("Expiry racing a reconnect is stale", func(t *testing.T) {
		// Given: order 2 dropped and its window already elapsed
		lc, expired := newStartedLifecycle(t, time.Millisecond)
		require.NoError(t, lc.DepartUngraceful("p2"))
		e := waitExpiry(t, expired)

		// When: the reconnect is processed before the expiry
		require.NoError(t, lc.Reconnect("p2"))

		// Then: the expiry loses
		assert.False(t, lc.Expire(e.participantID, e.generation))
		assert.Equal(t, entity.PhaseActive, lc.Session().Phase)
		assert.Len(t, lc.Session().Roster, 2)
	})

	t.Run("Dropping twice keeps the first window", func(t *testing.T) {
		lc, _ := newStartedLifecycle(t, time.Minute)
		require.NoError(t, lc.DepartUngraceful("p2"))
		require.NoError(t, lc.DepartUngraceful("p2"))

		assert.Equal(t, 1, lc.PendingWindows())
	})

	t.Run("Expiry in a waiting session removes without outcome", func(t *testing.T) {
		lc, expired := newLifecycle(t, time.Millisecond)
		_, err := lc.Admit("p1", "Alice")
		require.NoError(t, err)
		require.NoError(t, lc.DepartUngraceful("p1"))
		assert.Equal(t, entity.PhaseWaiting, lc.Session().Phase)

		e := waitExpiry(t, expired)
		assert.True(t, lc.Expire(e.participantID, e.generation))

		assert.True(t, lc.Session().Outcome.IsNone())
		assert.True(t, lc.Session().IsDisposable())
	})

	t.Run("Reconnect of unknown participant", func(t *testing.T) {
		lc, _ := newStartedLifecycle(t, time.Minute)

		require.ErrorIs(t, lc.Reconnect("ghost"), apperror.ErrUnknownParticipant)
	})
}

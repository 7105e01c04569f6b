package lifecycle

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-battleroom/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-battleroom/internal/entity"
)

// ExpireFunc is invoked from the timer goroutine when a grace window elapses.
// It must hand the expiry back to the session's event loop, which then calls Expire.
type ExpireFunc func(participantID string, generation uint64)

type graceWindow struct {
	timer      *time.Timer
	generation uint64
}

// Lifecycle owns admission, departures and grace windows of one session.
// It is not safe for concurrent use; the owning room serializes every call.
type Lifecycle struct {
	session  *entity.Session
	grace    time.Duration
	onExpire ExpireFunc

	windows    map[string]graceWindow
	generation uint64
}

func New(session *entity.Session, grace time.Duration, onExpire ExpireFunc) *Lifecycle {
	return &Lifecycle{
		session:  session,
		grace:    grace,
		onExpire: onExpire,
		windows:  make(map[string]graceWindow),
	}
}

func (that *Lifecycle) Session() *entity.Session {
	return that.session
}

// Admit - seats a new participant; the second admission starts the game and locks the session.
func (that *Lifecycle) Admit(participantID, name string) (*entity.Participant, error) {
	if _, ok := that.session.Participant(participantID); ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrAlreadyJoined, participantID)
	}

	if !that.session.HasFreeSeat() {
		return nil, apperror.ErrSessionFull
	}

	participant := entity.NewParticipant(participantID, that.session.NextOrder(), name)
	that.session.Roster[participantID] = participant

	if len(that.session.Roster) == entity.MaxParticipants {
		that.session.Start()
	}

	return participant, nil
}

// DepartGraceful - removes the participant at once. Leaving a game in play forfeits it.
func (that *Lifecycle) DepartGraceful(participantID string) error {
	participant, ok := that.session.Participant(participantID)
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrUnknownParticipant, participantID)
	}

	that.cancelWindow(participantID)
	that.remove(participant)

	return nil
}

// DepartUngraceful - marks the participant disconnected and opens its grace window.
// Play continues meanwhile.
func (that *Lifecycle) DepartUngraceful(participantID string) error {
	participant, ok := that.session.Participant(participantID)
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrUnknownParticipant, participantID)
	}

	if !participant.Connected {
		return nil
	}

	participant.Connected = false
	that.session.RefreshPhase()
	that.openWindow(participantID)

	return nil
}

// Reconnect - closes a pending grace window; the expiry for it becomes stale.
func (that *Lifecycle) Reconnect(participantID string) error {
	participant, ok := that.session.Participant(participantID)
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrUnknownParticipant, participantID)
	}

	that.cancelWindow(participantID)
	participant.Connected = true
	that.session.RefreshPhase()

	return nil
}

// Expire - resolves an elapsed grace window. It reports false for a stale generation,
// i.e. when a reconnect or departure already closed that window.
func (that *Lifecycle) Expire(participantID string, generation uint64) bool {
	window, ok := that.windows[participantID]
	if !ok || window.generation != generation {
		return false
	}
	delete(that.windows, participantID)

	participant, ok := that.session.Participant(participantID)
	if !ok {
		return false
	}

	that.remove(participant)

	return true
}

// PendingWindows returns the number of open grace windows.
func (that *Lifecycle) PendingWindows() int {
	return len(that.windows)
}

// Stop - cancels every open window. Used on session disposal.
func (that *Lifecycle) Stop() {
	for participantID := range that.windows {
		that.cancelWindow(participantID)
	}
}

// remove drops the participant permanently and awards a forfeit when a game was in play.
func (that *Lifecycle) remove(participant *entity.Participant) {
	delete(that.session.Roster, participant.ID)

	if that.session.Phase.InPlay() && that.session.Outcome.IsNone() {
		that.session.Finish(entity.Outcome{
			Kind:   entity.OutcomeForfeit,
			Winner: entity.Opponent(participant.Order),
		})
	}
}

func (that *Lifecycle) openWindow(participantID string) {
	that.cancelWindow(participantID)

	that.generation++
	generation := that.generation

	that.windows[participantID] = graceWindow{
		generation: generation,
		timer: time.AfterFunc(that.grace, func() {
			that.onExpire(participantID, generation)
		}),
	}
}

func (that *Lifecycle) cancelWindow(participantID string) {
	window, ok := that.windows[participantID]
	if !ok {
		return
	}

	window.timer.Stop()
	delete(that.windows, participantID)
}

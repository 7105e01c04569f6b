package entity

import (
	"fmt"
	"sort"

	"github.com/rocketscienceinc/tictactoe-battleroom/internal/apperror"
)

const MaxParticipants = 2

type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseActive
	PhaseSuspended
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseActive:
		return "active"
	case PhaseSuspended:
		return "suspended"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// InPlay reports whether moves may be applied. A suspended session still accepts moves.
func (p Phase) InPlay() bool {
	return p == PhaseActive || p == PhaseSuspended
}

type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeWin
	OutcomeDraw
	OutcomeForfeit
)

type Outcome struct {
	Kind   OutcomeKind
	Winner int
	Line   int
}

func (that Outcome) IsNone() bool {
	return that.Kind == OutcomeNone
}

// Session is the canonical state of one match.
type Session struct {
	ID      string
	Board   Board
	Turn    int
	Phase   Phase
	Outcome Outcome
	Roster  map[string]*Participant

	started   bool
	locked    bool
	nextOrder int
}

func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		Turn:      1,
		Phase:     PhaseWaiting,
		Roster:    make(map[string]*Participant, MaxParticipants),
		nextOrder: 1,
	}
}

func (that *Session) Participant(id string) (*Participant, bool) {
	participant, ok := that.Roster[id]
	return participant, ok
}

// ByOrder returns the roster entry holding the given seat.
func (that *Session) ByOrder(order int) (*Participant, bool) {
	for _, participant := range that.Roster {
		if participant.Order == order {
			return participant, true
		}
	}

	return nil, false
}

// IsLocked reports whether admission is closed.
func (that *Session) IsLocked() bool {
	return that.locked
}

// HasFreeSeat reports whether another participant may be admitted.
func (that *Session) HasFreeSeat() bool {
	return !that.locked && len(that.Roster) < MaxParticipants && that.nextOrder <= MaxParticipants
}

// NextOrder hands out the next seat. Seats are never reused within a session.
func (that *Session) NextOrder() int {
	order := that.nextOrder
	that.nextOrder++

	return order
}

// Start moves a full session into play and locks it against admission.
func (that *Session) Start() {
	that.started = true
	that.locked = true
	that.Phase = PhaseActive
	that.RefreshPhase()
}

// Finish records a terminal outcome. An existing outcome is never overwritten.
func (that *Session) Finish(outcome Outcome) {
	if that.Phase == PhaseFinished {
		return
	}

	that.Outcome = outcome
	that.Phase = PhaseFinished
}

// RefreshPhase toggles between active and suspended from the roster's connection flags.
func (that *Session) RefreshPhase() {
	if !that.Phase.InPlay() {
		return
	}

	that.Phase = PhaseActive
	for _, participant := range that.Roster {
		if !participant.Connected {
			that.Phase = PhaseSuspended
			return
		}
	}
}

// IsDisposable reports whether nothing is left to host: the roster is empty and the session
// either finished or lost its only waiting participant.
func (that *Session) IsDisposable() bool {
	if len(that.Roster) != 0 {
		return false
	}

	return that.Phase == PhaseFinished || (that.Phase == PhaseWaiting && that.nextOrder > 1)
}

// Validate - checks the session invariants.
func (that *Session) Validate() error {
	if err := that.Board.Validate(); err != nil {
		return err
	}

	if that.Turn != 1 && that.Turn != 2 {
		return fmt.Errorf("%w: turn %d", apperror.ErrInvariantViolation, that.Turn)
	}

	if len(that.Roster) > MaxParticipants {
		return fmt.Errorf("%w: %d participants", apperror.ErrInvariantViolation, len(that.Roster))
	}

	seen := make(map[int]string, MaxParticipants)
	for id, participant := range that.Roster {
		if participant.ID != id {
			return fmt.Errorf("%w: roster key %q holds participant %q", apperror.ErrInvariantViolation, id, participant.ID)
		}

		if participant.Order != 1 && participant.Order != 2 {
			return fmt.Errorf("%w: participant %q has order %d", apperror.ErrInvariantViolation, id, participant.Order)
		}

		if other, ok := seen[participant.Order]; ok {
			return fmt.Errorf("%w: participants %q and %q share order %d", apperror.ErrInvariantViolation, other, id, participant.Order)
		}
		seen[participant.Order] = id
	}

	switch {
	case that.Phase.InPlay():
		if len(that.Roster) != MaxParticipants || !that.Outcome.IsNone() {
			return fmt.Errorf("%w: %s with %d participants and outcome %d",
				apperror.ErrInvariantViolation, that.Phase, len(that.Roster), that.Outcome.Kind)
		}
	case that.Phase == PhaseFinished:
		if that.Outcome.IsNone() {
			return fmt.Errorf("%w: finished without outcome", apperror.ErrInvariantViolation)
		}
	case that.Phase == PhaseWaiting:
		if !that.Outcome.IsNone() || that.Board.MovesPlayed() != 0 {
			return fmt.Errorf("%w: waiting session carries moves or outcome", apperror.ErrInvariantViolation)
		}
	}

	return nil
}

// Snapshot - returns the outbound wire view of the state.
func (that *Session) Snapshot() Snapshot {
	snapshot := Snapshot{
		Turn:               that.Turn,
		WaitingForOpponent: !that.started,
		Started:            that.started,
		Finished:           that.Phase == PhaseFinished,
	}

	cells := that.Board.Cells()
	for i, cell := range cells {
		snapshot.Board[i] = int(cell)
	}

	switch that.Outcome.Kind {
	case OutcomeWin:
		snapshot.Winner = that.Outcome.Winner
		snapshot.WinType = that.Outcome.Line
	case OutcomeForfeit:
		snapshot.Winner = that.Outcome.Winner
		snapshot.OpponentDeserted = true
	case OutcomeNone, OutcomeDraw:
	}

	return snapshot
}

// View - returns the snapshot together with the public roster, ordered by seat.
func (that *Session) View() RoomView {
	players := make([]Participant, 0, len(that.Roster))
	for _, participant := range that.Roster {
		players = append(players, *participant)
	}

	sort.Slice(players, func(i, j int) bool {
		return players[i].Order < players[j].Order
	})

	return RoomView{
		RoomID:  that.ID,
		State:   that.Snapshot(),
		Players: players,
	}
}

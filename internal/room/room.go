package room

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe-battleroom/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-battleroom/internal/entity"
	"github.com/rocketscienceinc/tictactoe-battleroom/internal/lifecycle"
	"github.com/rocketscienceinc/tictactoe-battleroom/internal/tictactoe"
)

const defaultInboxSize = 64

// Syncer publishes the externally visible replica after every mutation.
type Syncer interface {
	Sync(ctx context.Context, view entity.RoomView) error
}

// SyncFunc adapts a function to Syncer.
type SyncFunc func(ctx context.Context, view entity.RoomView) error

func (f SyncFunc) Sync(ctx context.Context, view entity.RoomView) error {
	return f(ctx, view)
}

type Options struct {
	GraceWindow time.Duration
	InboxSize   int

	// EmptyRoomTTL disposes a room that still has nobody seated this long after it opened.
	// Zero keeps it open.
	EmptyRoomTTL time.Duration

	// OnDispose is called from the room's goroutine once nothing is left to host.
	OnDispose func(roomID string)
}

// Room serializes every event of one session through a single goroutine.
type Room struct {
	id      string
	logger  *slog.Logger
	syncers []Syncer
	options Options

	lifecycle *lifecycle.Lifecycle
	inbox     chan event
	done      chan struct{}
	abandoned bool
}

func New(logger *slog.Logger, id string, options Options, syncers ...Syncer) *Room {
	if options.InboxSize <= 0 {
		options.InboxSize = defaultInboxSize
	}

	that := &Room{
		id:      id,
		logger:  logger.With("component", "room", "roomID", id),
		syncers: syncers,
		options: options,
		inbox:   make(chan event, options.InboxSize),
		done:    make(chan struct{}),
	}

	that.lifecycle = lifecycle.New(entity.NewSession(id), options.GraceWindow, that.postExpiry)

	return that
}

func (that *Room) ID() string {
	return that.id
}

// Done is closed when the room stops processing events.
func (that *Room) Done() <-chan struct{} {
	return that.done
}

// Run - processes the inbox until ctx is cancelled or the session is disposed.
func (that *Room) Run(ctx context.Context) {
	defer close(that.done)
	defer that.lifecycle.Stop()

	that.logger.Info("room opened")

	if that.options.EmptyRoomTTL > 0 {
		idle := time.AfterFunc(that.options.EmptyRoomTTL, that.postIdle)
		defer idle.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			that.logger.Info("room stopped", "reason", ctx.Err())
			return
		case ev := <-that.inbox:
			that.handle(ctx, ev)

			if that.abandoned || that.lifecycle.Session().IsDisposable() {
				that.dispose()
				return
			}
		}
	}
}

// Join - onJoin: admits participantID under name.
func (that *Room) Join(ctx context.Context, participantID, name string) (entity.Participant, error) {
	res := that.send(ctx, &joinEvent{participantID: participantID, name: name})
	return res.participant, res.err
}

// Act - onAction: payload is the picked cell as a base-10 integer string.
func (that *Room) Act(ctx context.Context, participantID, payload string) error {
	return that.send(ctx, &actionEvent{participantID: participantID, payload: payload}).err
}

// Leave - onLeave: a consented leave forfeits at once, otherwise a grace window opens.
func (that *Room) Leave(ctx context.Context, participantID string, consented bool) error {
	return that.send(ctx, &leaveEvent{participantID: participantID, consented: consented}).err
}

// Reconnect - resumes a participant inside its grace window.
func (that *Room) Reconnect(ctx context.Context, participantID string) (entity.Participant, error) {
	res := that.send(ctx, &reconnectEvent{participantID: participantID})
	return res.participant, res.err
}

// View - returns the current snapshot and roster.
func (that *Room) View(ctx context.Context) (entity.RoomView, error) {
	res := that.send(ctx, &viewEvent{})
	return res.view, res.err
}

func (that *Room) send(ctx context.Context, ev event) result {
	reply := make(chan result, 1)
	ev.setReply(reply)

	select {
	case that.inbox <- ev:
	case <-that.done:
		return result{err: apperror.ErrRoomClosed}
	case <-ctx.Done():
		return result{err: ctx.Err()}
	}

	select {
	case res := <-reply:
		return res
	case <-that.done:
		select {
		case res := <-reply:
			return res
		default:
			return result{err: apperror.ErrRoomClosed}
		}
	case <-ctx.Done():
		return result{err: ctx.Err()}
	}
}

// postExpiry runs on the timer goroutine and hands the expiry to the event loop.
func (that *Room) postExpiry(participantID string, generation uint64) {
	ev := &expiryEvent{participantID: participantID, generation: generation}
	ev.setReply(make(chan result, 1))

	select {
	case that.inbox <- ev:
	case <-that.done:
	}
}

func (that *Room) postIdle() {
	ev := &idleEvent{}
	ev.setReply(make(chan result, 1))

	select {
	case that.inbox <- ev:
	case <-that.done:
	}
}

func (that *Room) handle(ctx context.Context, ev event) {
	res, mutated := that.apply(ev)

	session := that.lifecycle.Session()
	if err := session.Validate(); err != nil {
		panic(fmt.Errorf("room %s: %w", that.id, err))
	}

	if mutated {
		res.view = session.View()
		that.sync(ctx, res.view)
	}

	ev.respond(res)
}

func (that *Room) apply(ev event) (result, bool) {
	log := that.logger.With("method", "apply")
	session := that.lifecycle.Session()

	switch ev := ev.(type) {
	case *joinEvent:
		participant, err := that.lifecycle.Admit(ev.participantID, ev.name)
		if err != nil {
			log.Info("join rejected", "participantID", ev.participantID, "error", err)
			return result{err: err}, false
		}

		log.Info("participant joined", "participantID", participant.ID, "order", participant.Order)
		return result{participant: *participant}, true

	case *actionEvent:
		participant, ok := session.Participant(ev.participantID)
		if !ok {
			return result{err: fmt.Errorf("%w: %s", apperror.ErrUnknownParticipant, ev.participantID)}, false
		}

		cell, err := parseCell(ev.payload)
		if err != nil {
			return result{err: err}, false
		}

		if err = tictactoe.SubmitMove(session, participant.Order, cell); err != nil {
			log.Debug("move rejected", "participantID", participant.ID, "cell", cell, "error", err)
			return result{err: err}, false
		}

		if session.Phase == entity.PhaseFinished {
			log.Info("game finished", "winner", session.Outcome.Winner, "line", session.Outcome.Line)
		}
		return result{}, true

	case *leaveEvent:
		var err error
		if ev.consented {
			err = that.lifecycle.DepartGraceful(ev.participantID)
		} else {
			err = that.lifecycle.DepartUngraceful(ev.participantID)
		}

		if err != nil {
			return result{err: err}, false
		}

		log.Info("participant left", "participantID", ev.participantID, "consented", ev.consented, "phase", session.Phase.String())
		return result{}, true

	case *reconnectEvent:
		if err := that.lifecycle.Reconnect(ev.participantID); err != nil {
			return result{err: err}, false
		}

		participant, _ := session.Participant(ev.participantID)
		log.Info("participant reconnected", "participantID", ev.participantID)
		return result{participant: *participant}, true

	case *expiryEvent:
		if !that.lifecycle.Expire(ev.participantID, ev.generation) {
			return result{}, false
		}

		log.Info("grace window elapsed", "participantID", ev.participantID, "phase", session.Phase.String())
		return result{}, true

	case *idleEvent:
		if len(session.Roster) != 0 {
			return result{}, false
		}

		log.Info("room stayed empty, closing", "ttl", that.options.EmptyRoomTTL)
		that.abandoned = true
		return result{}, false

	case *viewEvent:
		return result{view: session.View()}, false

	default:
		panic(fmt.Sprintf("room: unknown event %T", ev))
	}
}

func (that *Room) sync(ctx context.Context, view entity.RoomView) {
	for _, syncer := range that.syncers {
		if err := syncer.Sync(ctx, view); err != nil {
			that.logger.Error("failed to sync state", "error", err)
		}
	}
}

func (that *Room) dispose() {
	that.logger.Info("room disposed")

	if that.options.OnDispose != nil {
		that.options.OnDispose(that.id)
	}
}

// parseCell - converts a raw pick payload to a cell index.
func parseCell(payload string) (int, error) {
	cell, err := strconv.Atoi(strings.TrimSpace(payload))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperror.ErrInvalidPayload, payload)
	}

	return cell, nil
}

package room

import "github.com/rocketscienceinc/tictactoe-battleroom/internal/entity"

type result struct {
	participant entity.Participant
	view        entity.RoomView
	err         error
}

type event interface {
	setReply(reply chan<- result)
	respond(res result)
}

type replier struct {
	reply chan<- result
}

func (that *replier) setReply(reply chan<- result) {
	that.reply = reply
}

// respond never blocks: reply channels are buffered for exactly one result.
func (that *replier) respond(res result) {
	that.reply <- res
}

type joinEvent struct {
	replier
	participantID string
	name          string
}

type actionEvent struct {
	replier
	participantID string
	payload       string
}

type leaveEvent struct {
	replier
	participantID string
	consented     bool
}

type reconnectEvent struct {
	replier
	participantID string
}

type expiryEvent struct {
	replier
	participantID string
	generation    uint64
}

// idleEvent fires once, EmptyRoomTTL after the room opened.
type idleEvent struct {
	replier
}

type viewEvent struct {
	replier
}

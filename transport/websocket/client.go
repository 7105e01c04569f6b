package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client is one socket. Its fields are owned by the connection's read goroutine;
// the write pump only drains send.
type client struct {
	conn *websocket.Conn
	send chan Message

	roomID        string
	participantID string
	left          bool

	// room updates are held back while a join is in flight, so that
	// "joined" is always the first frame of the seat.
	holdMutex sync.Mutex
	holding   bool
	held      []Message
}

func newClient(conn *websocket.Conn) *client {
	conn.SetReadLimit(maxMessageSize)

	return &client{
		conn: conn,
		send: make(chan Message, sendBufferSize),
	}
}

func (that *client) joined() bool {
	return that.roomID != ""
}

func (that *client) trySend(message Message) bool {
	select {
	case that.send <- message:
		return true
	default:
		return false
	}
}

// hold - queues room updates until release.
func (that *client) hold() {
	that.holdMutex.Lock()
	defer that.holdMutex.Unlock()

	that.holding = true
}

// release - sends first, if any, then everything held since hold.
func (that *client) release(first *Message) {
	that.holdMutex.Lock()
	defer that.holdMutex.Unlock()

	if first != nil {
		that.trySend(*first)
	}
	for _, message := range that.held {
		that.trySend(message)
	}

	that.held = nil
	that.holding = false
}

// discard - drops everything held since hold.
func (that *client) discard() {
	that.holdMutex.Lock()
	defer that.holdMutex.Unlock()

	that.held = nil
	that.holding = false
}

// deliver - sends a room update, or queues it while a join is in flight.
func (that *client) deliver(message Message) bool {
	that.holdMutex.Lock()
	defer that.holdMutex.Unlock()

	if that.holding {
		if len(that.held) >= sendBufferSize {
			return false
		}
		that.held = append(that.held, message)
		return true
	}

	return that.trySend(message)
}

func (that *client) sendError(action string, err error) {
	that.trySend(Message{Action: actionError, Payload: ErrorPayload{Action: action, Error: err.Error()}})
}

func (that *client) close() {
	close(that.send)
}

// writePump - writes queued messages until send is closed, then closes the socket.
func (that *client) writePump(logger *slog.Logger) {
	log := logger.With("method", "writePump")

	defer that.conn.Close()

	for message := range that.send {
		_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))

		if err := that.conn.WriteJSON(message); err != nil {
			log.Info("failed to write message", "action", message.Action, "error", err)
			return
		}
	}

	_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = that.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

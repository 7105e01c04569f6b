package rest

import (
	"net/http"
	"strconv"
)

const hostedRoomsHeader = "X-Hosted-Rooms"

type roomCounter interface {
	RoomCount() int
}

// PingHandler answers liveness checks and reports how many rooms the process hosts.
type PingHandler struct {
	rooms roomCounter
}

func NewPingHandler(rooms roomCounter) *PingHandler {
	return &PingHandler{rooms: rooms}
}

func (that *PingHandler) Ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set(hostedRoomsHeader, strconv.Itoa(that.rooms.RoomCount()))
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write([]byte("pong"))
}

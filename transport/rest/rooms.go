package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-battleroom/internal/apperror"
)

type RoomHandler struct {
	roomUseCase roomUseCase
}

func NewRoomHandler(roomUseCase roomUseCase) *RoomHandler {
	return &RoomHandler{roomUseCase: roomUseCase}
}

type createRoomResponse struct {
	ID string `json:"id"`
}

// CreateRoom - opens a new session; players then join it over the socket.
func (that *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := that.roomUseCase.CreateRoom(r.Context())
	if err != nil {
		http.Error(w, "failed to create room", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, createRoomResponse{ID: roomID})
}

// GetRoom - returns the room's latest snapshot and roster.
func (that *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	view, err := that.roomUseCase.GetRoom(r.Context(), r.PathValue("id"))
	if errors.Is(err, apperror.ErrRoomNotFound) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	if err != nil {
		http.Error(w, "failed to get room", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

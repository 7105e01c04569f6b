package apperror

import "errors"

// Rejections. None of them change session state.
var (
	ErrOutOfRange         = errors.New("cell index out of range")
	ErrCellOccupied       = errors.New("cell is already occupied")
	ErrSessionFull        = errors.New("session is full")
	ErrNotYourTurn        = errors.New("it's not your turn")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrGameFinished       = errors.New("game is already finished")
	ErrGameIsNotStarted   = errors.New("game is not started")
	ErrAlreadyJoined      = errors.New("participant already joined")
	ErrInvalidPayload     = errors.New("invalid action payload")
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomClosed         = errors.New("room is closed")
)

// ErrInvariantViolation marks a programming error; callers must not recover from it.
var ErrInvariantViolation = errors.New("session invariant violated")

package websocket

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/rocketscienceinc/tictactoe-battleroom/internal/apperror"
)

const (
	actionJoin   = "join"
	actionPick   = "pick"
	actionLeave  = "leave"
	actionJoined = "joined"
	actionLeft   = "left"
	actionState  = "state"
	actionError  = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string `json:"action"`
	Payload any    `json:"payload,omitempty"`
}

type joinPayload struct {
	Room    string `mapstructure:"room"`
	Name    string `mapstructure:"name"`
	Session string `mapstructure:"session"`
}

type pickPayload struct {
	Cell string `mapstructure:"cell"`
}

// JoinedPayload is sent to the joining client only; Session is its reconnection token.
// It always precedes the first "state" the client receives for the room.
type JoinedPayload struct {
	Room    string `json:"room"`
	Session string `json:"session"`
	Order   int    `json:"order"`
	Name    string `json:"name"`
}

type ErrorPayload struct {
	Action string `json:"action"`
	Error  string `json:"error"`
}

func decodeJoin(payload any) (joinPayload, error) {
	var join joinPayload
	if err := mapstructure.WeakDecode(payload, &join); err != nil {
		return joinPayload{}, fmt.Errorf("%w: %w", apperror.ErrInvalidPayload, err)
	}

	if join.Room == "" {
		return joinPayload{}, fmt.Errorf("%w: room is required", apperror.ErrInvalidPayload)
	}

	return join, nil
}

// decodeCell - accepts "4", 4 or {"cell": 4} and returns the raw cell string.
func decodeCell(payload any) (string, error) {
	if fields, ok := payload.(map[string]any); ok {
		var pick pickPayload
		if err := mapstructure.WeakDecode(fields, &pick); err != nil {
			return "", fmt.Errorf("%w: %w", apperror.ErrInvalidPayload, err)
		}

		return pick.Cell, nil
	}

	var raw string
	if err := mapstructure.WeakDecode(payload, &raw); err != nil {
		return "", fmt.Errorf("%w: %w", apperror.ErrInvalidPayload, err)
	}

	return raw, nil
}

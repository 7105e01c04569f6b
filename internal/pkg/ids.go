package pkg

import "github.com/google/uuid"

// GenerateRoomID - generates a unique identifier for the room.
func GenerateRoomID() string {
	return uuid.NewString()
}

// GenerateNewSessionID - generates the opaque identity a connection joins with.
// It doubles as the reconnection token, so it is never broadcast to other clients.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

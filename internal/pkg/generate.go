package pkg

import "github.com/google/uuid"

const roomIDLength = 8

// GenerateRoomID - generates a short opaque identifier for a room.
func GenerateRoomID() string {
	return uuid.NewString()[:roomIDLength]
}

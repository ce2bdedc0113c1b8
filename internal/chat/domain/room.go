package domain

import (
	"crypto/rand"
	"time"
)

// Room is one side of a pairwise chat relationship. A pair that has
// exchanged at least one message owns two mirrored rows, one per
// orientation, sharing the same Name and CreatedAt.
type Room struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	OwnerID        int64     `json:"owner_id"`
	CounterpartyID int64     `json:"counterparty_id"`
	CreatedAt      time.Time `json:"created_at"`
}

const roomNameAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewRoomName returns "R-" followed by 32 random alphanumeric characters.
// Room names double as broadcast group keys, so they must be unguessable.
// Bytes outside the largest multiple of the alphabet size are rejected
// to keep the draw uniform.
func NewRoomName() string {
	const limit = byte(len(roomNameAlphabet) * (256 / len(roomNameAlphabet)))
	name := make([]byte, 0, 32)
	buf := make([]byte, 64)
	for len(name) < cap(name) {
		if _, err := rand.Read(buf); err != nil {
			panic(err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			name = append(name, roomNameAlphabet[int(b)%len(roomNameAlphabet)])
			if len(name) == cap(name) {
				break
			}
		}
	}
	return "R-" + string(name)
}

// RoomGroup maps a room name to its broadcast fabric group.
func RoomGroup(roomName string) string {
	return "chat:room:" + roomName
}

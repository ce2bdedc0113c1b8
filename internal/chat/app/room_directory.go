package app

import (
	"context"
	"time"

	"blog_chat_service/internal/chat/domain"
	"blog_chat_service/internal/chat/repository"
)

// RoomDirectory resolves the broadcast group name for a pair of members
// and materializes the mirrored room rows on first message exchange.
type RoomDirectory struct {
	roomRepo repository.RoomRepository
}

// NewRoomDirectory init room directory
func NewRoomDirectory(roomRepo repository.RoomRepository) *RoomDirectory {
	return &RoomDirectory{roomRepo: roomRepo}
}

// Resolve returns the pair's room name plus the existing room row when
// one exists. For a pair that has never talked a fresh random name is
// returned without creating rows; creation waits for the first message.
func (d *RoomDirectory) Resolve(ctx context.Context, userID, counterpartyID int64) (string, *domain.Room, error) {
	room, err := d.roomRepo.FindPairRoom(ctx, userID, counterpartyID)
	if err != nil {
		return "", nil, err
	}
	if room != nil {
		return room.Name, room, nil
	}
	return domain.NewRoomName(), nil, nil
}

// Ensure get-or-creates both orientations of the pair under the shared
// name, stamped with the triggering message's timestamp so the first
// message is never cut off by the history boundary. Safe to call once
// per message send; concurrent callers converge on the same rows.
func (d *RoomDirectory) Ensure(ctx context.Context, userID, counterpartyID int64, name string, createdAt time.Time) (*domain.Room, error) {
	return d.roomRepo.EnsurePair(ctx, userID, counterpartyID, name, createdAt)
}

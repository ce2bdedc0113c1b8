package app

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"blog_chat_service/internal/chat/domain"
	"blog_chat_service/internal/chat/repository"
	"blog_chat_service/pkg/middlewares"
)

// ChatHTTPHandler serves the read-only REST view over rooms and their
// message history. Writes happen exclusively over the socket.
type ChatHTTPHandler struct {
	roomRepo repository.RoomRepository
	messages repository.MessageRepository
}

// NewChatHTTPHandler create ChatHTTPHandler
func NewChatHTTPHandler(roomRepo repository.RoomRepository, messages repository.MessageRepository) *ChatHTTPHandler {
	return &ChatHTTPHandler{roomRepo: roomRepo, messages: messages}
}

type roomResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	CounterpartyID int64     `json:"counterparty_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListRooms returns the caller-owned side of every chat relationship.
func (h *ChatHTTPHandler) ListRooms(c *fiber.Ctx) error {
	memberID, _ := c.Locals(middlewares.TokenMemberID).(int64)

	rooms, err := h.roomRepo.ListByOwner(c.Context(), memberID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list rooms"})
	}

	resp := []roomResponse{}
	for _, room := range rooms {
		resp = append(resp, roomResponse{
			ID:             room.ID,
			Name:           room.Name,
			CounterpartyID: room.CounterpartyID,
			CreatedAt:      room.CreatedAt,
		})
	}
	return c.JSON(resp)
}

// RoomMessages replays one room's history over REST, same visibility rule
// as the socket: messages since the room was created, ascending.
func (h *ChatHTTPHandler) RoomMessages(c *fiber.Ctx) error {
	memberID, _ := c.Locals(middlewares.TokenMemberID).(int64)

	room, done := h.ownedRoom(c, memberID)
	if room == nil {
		return done
	}

	messages, err := h.messages.HistorySince(c.Context(), room.OwnerID, room.CounterpartyID, room.CreatedAt)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load messages"})
	}

	resp := []domain.HistoryEntry{}
	for _, msg := range messages {
		resp = append(resp, domain.NewHistoryEntry(msg))
	}
	return c.JSON(resp)
}

// DeleteRoom removes the caller's own view of the relationship. The
// counterparty's mirrored row and the message log are untouched.
func (h *ChatHTTPHandler) DeleteRoom(c *fiber.Ctx) error {
	memberID, _ := c.Locals(middlewares.TokenMemberID).(int64)

	room, done := h.ownedRoom(c, memberID)
	if room == nil {
		return done
	}
	if err := h.roomRepo.DeleteOwned(c.Context(), memberID, room.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete room"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ownedRoom loads the room named by the :id param when memberID owns it.
// A nil room means the response has already been written.
func (h *ChatHTTPHandler) ownedRoom(c *fiber.Ctx, memberID int64) (*domain.Room, error) {
	roomID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
	}
	room, err := h.roomRepo.FindByID(c.Context(), roomID)
	if err != nil {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load room"})
	}
	if room == nil || room.OwnerID != memberID {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
	}
	return room, nil
}

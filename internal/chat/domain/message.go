package domain

import "time"

// Message is one immutable chat line between two members. Messages are
// addressed to the pair, not to a room, so they stay visible through
// either party's room row.
type Message struct {
	ID          int64     `json:"id"`
	Content     string    `json:"content"`
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventChatMessage is the only event type carried by the broadcast fabric.
const EventChatMessage = "chat_message"

// ChatEvent is the payload published to a room's broadcast group and fanned
// out to every connected session of the pair, the publisher included.
type ChatEvent struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	SenderID  int64  `json:"sender_id"`
	CreatedAt string `json:"created_at"`
}

// NewChatEvent builds the broadcast payload for a stored message.
func NewChatEvent(m *Message) ChatEvent {
	return ChatEvent{
		Type:      EventChatMessage,
		Content:   m.Content,
		SenderID:  m.SenderID,
		CreatedAt: m.CreatedAt.Format(time.RFC3339Nano),
	}
}

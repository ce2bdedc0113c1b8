package domain

import "time"

// Frame types sent to the client, discriminated by the "type" field.
const (
	FrameConnectionEstablished = "connection_established"
	FrameChat                  = "chat"
	FrameError                 = "error"
)

// ConnectionSuccessMessage is the text carried by the first frame of a
// successfully joined session.
const ConnectionSuccessMessage = "connection established successfully"

// InboundFrame is the only frame a client sends over the socket.
type InboundFrame struct {
	Content string `json:"content"`
}

// Participant is the counterparty's public profile.
type Participant struct {
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
}

// HistoryEntry is one replayed message inside the
// connection_established frame.
type HistoryEntry struct {
	Content   string `json:"content"`
	SenderID  int64  `json:"sender_id"`
	CreatedAt string `json:"created_at"`
}

// ConnectionEstablishedFrame is emitted once after a session joins its
// room group. History is ascending by message time.
type ConnectionEstablishedFrame struct {
	Type        string         `json:"type"`
	Message     string         `json:"message"`
	Participant Participant    `json:"participant"`
	History     []HistoryEntry `json:"history"`
}

// ChatFrame re-emits a broadcast chat event to the client.
type ChatFrame struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	SenderID  int64  `json:"sender_id"`
	CreatedAt string `json:"created_at"`
}

// ErrorFrame is the structured reason sent before a terminal close. A
// session never closes with a bare disconnect.
type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewHistoryEntry converts a stored message for replay.
func NewHistoryEntry(m Message) HistoryEntry {
	return HistoryEntry{
		Content:   m.Content,
		SenderID:  m.SenderID,
		CreatedAt: m.CreatedAt.Format(time.RFC3339Nano),
	}
}

// NewChatFrame converts a broadcast event for delivery to the client.
func NewChatFrame(evt ChatEvent) ChatFrame {
	return ChatFrame{
		Type:      FrameChat,
		Content:   evt.Content,
		SenderID:  evt.SenderID,
		CreatedAt: evt.CreatedAt,
	}
}

package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"blog_chat_service/internal/chat/domain"
	"blog_chat_service/internal/chat/repository"
	memberrepo "blog_chat_service/internal/member/repository"
	"blog_chat_service/pkg/logger"
	"blog_chat_service/pkg/middlewares"
)

const pingInterval = 10 * time.Minute

// ChatWebsocketHandler owns the socket transport around a ChatSession.
type ChatWebsocketHandler struct {
	directory *RoomDirectory
	messages  repository.MessageRepository
	members   memberrepo.MemberRepository
	avatars   memberrepo.AvatarStore
	pubsub    repository.PubSub
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	directory *RoomDirectory,
	messages repository.MessageRepository,
	members memberrepo.MemberRepository,
	avatars memberrepo.AvatarStore,
	pubsub repository.PubSub,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		directory: directory,
		messages:  messages,
		members:   members,
		avatars:   avatars,
		pubsub:    pubsub,
	}
}

// HandleConnection is the websocket entry point. The upgrade has already
// been accepted; validation failures are reported as an error frame and
// then the socket is closed, never a bare disconnect.
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	memberID, _ := conn.Locals(middlewares.TokenMemberID).(int64)
	target := conn.Params("contact_id")

	ctxConn, cancel := context.WithCancel(ctx)
	session := NewChatSession(h.directory, h.messages, h.members, h.avatars, h.pubsub)

	// Deliveries arrive from the subscription goroutine while the read
	// loop may be writing error frames; one writer at a time.
	var writeMu sync.Mutex
	writeJSON := func(v interface{}) {
		b, _ := json.Marshal(v)
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			logger.Log.Errorf("websocket write error:", err)
		}
	}

	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		session.Close()
		cancel()
		conn.Close()
		logger.Log.Info("websocket closed", zap.Int64("memberID", memberID))
	}()

	conn.SetPongHandler(func(appData string) error {
		return nil
	})

	est, err := session.Open(ctxConn, memberID, target, func(frame domain.ChatFrame) {
		writeJSON(frame)
	})
	if err != nil {
		logger.Log.Warn("websocket session rejected",
			zap.Int64("memberID", memberID),
			zap.String("target", target),
			zap.Error(err))
		writeJSON(domain.NewErrorFrame(err))
		return
	}
	writeJSON(est)

	go func() {
		for {
			select {
			case <-ticker.C:
				writeMu.Lock()
				err := conn.WriteMessage(websocket.PingMessage, nil)
				writeMu.Unlock()
				if err != nil {
					logger.Log.Errorf("ping error:", err)
					return
				}
			case <-ctxConn.Done():
				return
			}
		}
	}()

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Info("websocket connection closed", zap.Int64("memberID", memberID))
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		var in domain.InboundFrame
		if err := json.Unmarshal(msg, &in); err != nil {
			logger.Log.Errorf("inbound frame decode error:", err)
			continue
		}
		if err := session.Send(ctxConn, in.Content); err != nil {
			logger.Log.Error("message relay failed",
				zap.Int64("memberID", memberID), zap.Error(err))
			writeJSON(domain.ErrorFrame{Type: domain.FrameError, Message: "message delivery failed"})
		}
	}
}

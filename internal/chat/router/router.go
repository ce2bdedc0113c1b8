package router

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"blog_chat_service/internal/chat/app"
	"blog_chat_service/pkg/middlewares"
)

// RegisterRoutes mounts the chat socket and the read-only REST view.
// The socket uses the lenient token middleware: the upgrade is always
// accepted and a missing identity is answered with an error frame, so
// the client never sees a bare transport rejection.
func RegisterRoutes(r *fiber.App, ws *app.ChatWebsocketHandler, rest *app.ChatHTTPHandler) {
	r.Get("/ws/:contact_id", middlewares.OptionalJWTMiddleware(), websocket.New(func(c *websocket.Conn) {
		ws.HandleConnection(context.Background(), c)
	}))

	chat := r.Group("/chats", middlewares.JWTMiddleware())
	chat.Get("/", rest.ListRooms)
	chat.Get("/:id/messages", rest.RoomMessages)
	chat.Delete("/:id", rest.DeleteRoom)
}

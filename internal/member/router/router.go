package router

import (
	"github.com/gofiber/fiber/v2"

	"blog_chat_service/internal/member/app"
	"blog_chat_service/pkg/middlewares"
)

// RegisterRoutes mounts the member endpoints. Register and login are
// public; everything under /members/me needs a valid token.
func RegisterRoutes(r *fiber.App, h *app.MemberHandler) {
	members := r.Group("/members")
	members.Post("/register", h.Register)
	members.Post("/login", h.Login)

	me := members.Group("/me", middlewares.JWTMiddleware())
	me.Get("/", h.Me)
	me.Put("/avatar", h.UploadAvatar)
}

package app

import (
	"github.com/gofiber/fiber/v2"

	"blog_chat_service/pkg/middlewares"
)

// MemberHandler exposes the identity provider over REST.
type MemberHandler struct {
	uc *MemberUseCase
}

// NewMemberHandler create MemberHandler
func NewMemberHandler(uc *MemberUseCase) *MemberHandler {
	return &MemberHandler{uc: uc}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register POST /members/register
func (h *MemberHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	member, err := h.uc.Register(c.Context(), RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":       member.ID,
		"username": member.Username,
		"email":    member.Email,
	})
}

// Login POST /members/login
func (h *MemberHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	jwt, member, err := h.uc.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}

	return c.JSON(fiber.Map{
		"token":    jwt,
		"id":       member.ID,
		"username": member.Username,
	})
}

// Me GET /members/me
func (h *MemberHandler) Me(c *fiber.Ctx) error {
	memberID, _ := c.Locals(middlewares.TokenMemberID).(int64)

	profile, err := h.uc.Profile(c.Context(), memberID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
	}
	return c.JSON(profile)
}

// UploadAvatar PUT /members/me/avatar (multipart field "avatar")
func (h *MemberHandler) UploadAvatar(c *fiber.Ctx) error {
	memberID, _ := c.Locals(middlewares.TokenMemberID).(int64)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file missing"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable avatar file"})
	}
	defer file.Close()

	url, err := h.uc.UploadAvatar(c.Context(), memberID,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file, fileHeader.Size)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "avatar upload failed"})
	}
	return c.JSON(fiber.Map{"avatar": url})
}

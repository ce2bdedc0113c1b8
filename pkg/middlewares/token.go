package middlewares

import (
	"github.com/gofiber/fiber/v2"

	t_token "blog_chat_service/pkg/token"
)

const (
	// QueryToken token in query name
	QueryToken = "auth"

	// CookieToken token in cookie name
	CookieToken = "auth_token"

	// TokenMemberID get member id from token, set c.Locals name
	TokenMemberID = "MemberID"
	// TokenRole get role from token, set c.Locals name
	TokenRole = "role"
)

func tokenFromRequest(c *fiber.Ctx) string {
	tokenStr := c.Query(QueryToken)
	if tokenStr == "" {
		tokenStr = c.Cookies(CookieToken)
	}
	return tokenStr
}

// JWTMiddleware validates the JWT from the auth query parameter or
// cookie and rejects the request when it is missing or invalid.
func JWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing token",
			})
		}

		claims, err := t_token.ParseJWT(tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals(TokenMemberID, claims.MemberID)
		c.Locals(TokenRole, claims.Role)
		return c.Next()
	}
}

// OptionalJWTMiddleware sets the member locals when a valid token is
// present but never rejects the request. The websocket route uses it so
// the upgrade is accepted first and authentication failures surface as
// an error frame instead of a transport-level rejection.
func OptionalJWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenStr := tokenFromRequest(c); tokenStr != "" {
			if claims, err := t_token.ParseJWT(tokenStr); err == nil {
				c.Locals(TokenMemberID, claims.MemberID)
				c.Locals(TokenRole, claims.Role)
			}
		}
		return c.Next()
	}
}

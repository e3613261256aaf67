package middleware

import (
	"context"
	"strings"

	"github.com/Soniti94/paseoslugo/internal/services"
	"github.com/gofiber/fiber/v2"
)

const SessionCookie = "session_token"

type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*services.Identity, error)
}

// AuthRequired accepts the session cookie first and falls back to a Bearer header.
func AuthRequired(resolver SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := SessionToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}

		identity, err := resolver.ResolveSession(c.Context(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired session",
			})
		}

		c.Locals("user_id", identity.UserID)
		c.Locals("role", identity.Role)
		c.Locals("session_token", token)

		return c.Next()
	}
}

func SessionToken(c *fiber.Ctx) string {
	if cookie := strings.TrimSpace(c.Cookies(SessionCookie)); cookie != "" {
		return cookie
	}

	parts := strings.SplitN(c.Get("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

package handlers

import (
	"strconv"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/Soniti94/paseoslugo/internal/services"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

func buildPaginationMeta(page, limit, total int) models.PaginationMeta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return models.PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// currentActor reads the identity stored by middleware.AuthRequired.
func currentActor(c *fiber.Ctx) (services.Actor, bool) {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return services.Actor{}, false
	}
	role, _ := c.Locals("role").(string)
	return services.Actor{UserID: userID, Role: role}, true
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
}

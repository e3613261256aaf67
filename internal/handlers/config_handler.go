package handlers

import (
	"github.com/Soniti94/paseoslugo/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ConfigHandler struct {
	googleMapsAPIKey string
}

func NewConfigHandler(googleMapsAPIKey string) *ConfigHandler {
	return &ConfigHandler{googleMapsAPIKey: googleMapsAPIKey}
}

func (h *ConfigHandler) PublicConfig(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"google_maps_api_key": h.googleMapsAPIKey})
}

func (h *ConfigHandler) Packages(c *fiber.Ctx) error {
	return c.JSON(services.ServicePackages())
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postforge/internal/service"
	"github.com/maheshrc27/postforge/internal/transfer"
)

type SettingsHandler struct {
	s service.SettingsService
}

func NewSettingsHandler(service service.SettingsService) *SettingsHandler {
	return &SettingsHandler{s: service}
}

func (h *SettingsHandler) GetSettingsInfo(c *fiber.Ctx) error {
	userID := GetUserID(c)

	settingsInfo, err := h.s.GetSettingsInfo(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to find settings for given user",
		})
	}

	return c.JSON(settingsInfo)
}

func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var settings transfer.SettingsUpdate
	if err := c.BodyParser(&settings); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	if err := h.s.UpdateSettings(c.Context(), userID, &settings); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to update settings",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *SettingsHandler) ProvidersConfigured(c *fiber.Ctx) error {
	userID := GetUserID(c)

	configured, err := h.s.ProvidersConfigured(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to check provider configuration",
		})
	}

	return c.JSON(configured)
}

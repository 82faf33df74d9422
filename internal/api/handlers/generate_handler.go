package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postforge/internal/models"
	"github.com/maheshrc27/postforge/internal/service"
	"github.com/maheshrc27/postforge/internal/transfer"
)

type GenerateHandler struct {
	s service.WorkflowService
}

func NewGenerateHandler(workflowService service.WorkflowService) *GenerateHandler {
	return &GenerateHandler{s: workflowService}
}

func (h *GenerateHandler) StartGeneration(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.GenerateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to parse json",
			})
		}
	}

	sessionID, err := h.s.StartRun(c.Context(), userID, req.BatchSize)
	if err != nil {
		if errors.Is(err, models.ErrAlreadyRunning) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "generation already in progress",
			})
		}
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to start generation",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"session_id": sessionID,
	})
}

func (h *GenerateHandler) GenerationStatus(c *fiber.Ctx) error {
	userID := GetUserID(c)

	status, err := h.s.GetStatus(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to get generation status",
		})
	}

	return c.Status(fiber.StatusOK).JSON(status)
}

func (h *GenerateHandler) GetSession(c *fiber.Ctx) error {
	sessionID, err := c.ParamsInt("id")
	if err != nil || sessionID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session id",
		})
	}

	session, err := h.s.GetSession(c.Context(), int64(sessionID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Session not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to get session",
		})
	}

	return c.Status(fiber.StatusOK).JSON(session)
}

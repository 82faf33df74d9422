package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postforge/internal/models"
	"github.com/maheshrc27/postforge/internal/service"
	"github.com/maheshrc27/postforge/internal/transfer"
)

type PostHandler struct {
	s  service.PostService
	st service.StatusService
}

func NewPostHandler(postService service.PostService, statusService service.StatusService) *PostHandler {
	return &PostHandler{s: postService, st: statusService}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pc transfer.PostCreation
	if err := c.BodyParser(&pc); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	post, err := h.s.Create(c.Context(), userID, &pc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":      post.ID,
		"post_id": post.PostID,
	})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if postID != 0 {
		post, err := h.s.PostInfo(c.Context(), int64(postID), userID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "Post not found",
				})
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to get post",
			})
		}
		return c.Status(fiber.StatusOK).JSON(post)
	}

	statusName := c.Query("status")
	if statusName != "" {
		status, ok := models.StatusFromName(statusName)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown status",
			})
		}

		posts, err := h.s.ListByStatus(c.Context(), userID, status)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to list posts",
			})
		}
		return c.Status(fiber.StatusOK).JSON(posts)
	}

	posts, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) UpdateStatus(c *fiber.Ctx) error {
	userID := GetUserID(c)

	postID, err := c.ParamsInt("id")
	if err != nil || postID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	var su transfer.StatusUpdate
	if err := c.BodyParser(&su); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	target, scheduledAt, err := parseStatusUpdate(su.Status, su.ScheduledAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	post, err := h.st.ApplyTransition(c.Context(), userID, int64(postID), target, scheduledAt)
	if err != nil {
		return statusTransitionError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) BulkUpdateStatus(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var bu transfer.BulkStatusUpdate
	if err := c.BodyParser(&bu); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}
	if len(bu.PostIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No post ids given",
		})
	}

	target, scheduledAt, err := parseStatusUpdate(bu.Status, bu.ScheduledAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	result, err := h.st.ApplyBulk(c.Context(), userID, bu.PostIDs, target, scheduledAt)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to apply transitions",
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *PostHandler) SelectContent(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var su transfer.SelectionUpdate
	if err := c.BodyParser(&su); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	if err := h.s.Select(c.Context(), userID, &su); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func parseStatusUpdate(statusName, scheduledAt string) (string, *time.Time, error) {
	target, ok := models.StatusFromName(statusName)
	if !ok {
		return "", nil, errors.New("unknown status")
	}

	if scheduledAt == "" {
		return target, nil, nil
	}

	at, err := time.Parse(time.RFC3339, scheduledAt)
	if err != nil {
		return "", nil, errors.New("scheduled_at must be RFC3339")
	}
	return target, &at, nil
}

func statusTransitionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found",
		})
	case errors.Is(err, models.ErrIllegalTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

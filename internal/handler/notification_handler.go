package handler

import (
	"quizcraft/internal/domain"
	"quizcraft/internal/dto"
	"quizcraft/internal/service"
	"quizcraft/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler handles notification subscription requests
type NotificationHandler struct {
	notifications service.NotificationService
	validator     *validation.Validator
}

// NewNotificationHandler creates a new NotificationHandler instance
func NewNotificationHandler(notifications service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		validator:     validation.NewValidator(),
	}
}

// Subscribe handles POST /api/notifications/subscribe
func (h *NotificationHandler) Subscribe(c *fiber.Ctx) error {
	var req dto.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("Invalid request body")
	}
	if errs := h.validator.ValidateSubscribeRequest(req.Email); len(errs) > 0 {
		return errs
	}

	resp, err := h.notifications.Subscribe(c.Context(), currentUserID(c), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

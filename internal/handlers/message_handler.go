package handlers

import (
	"context"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/gofiber/fiber/v2"
)

type messageService interface {
	Send(ctx context.Context, senderID string, recipientID string, content string, bookingID *string) (*models.Message, error)
	List(ctx context.Context, userID string) ([]models.MessageView, error)
	MarkRead(ctx context.Context, messageID string, readerID string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
}

type MessageHandler struct {
	messages messageService
}

func NewMessageHandler(messages messageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

type sendMessageRequest struct {
	RecipientID string  `json:"recipient_id"`
	Message     string  `json:"message"`
	BookingID   *string `json:"booking_id"`
}

func (h *MessageHandler) ListMessages(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	messages, err := h.messages.List(c.Context(), actor.UserID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(messages)
}

func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	message, err := h.messages.Send(c.Context(), actor.UserID, req.RecipientID, req.Message, req.BookingID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.messages.MarkRead(c.Context(), c.Params("id"), actor.UserID); err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Marked as read"})
}

func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	count, err := h.messages.UnreadCount(c.Context(), actor.UserID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

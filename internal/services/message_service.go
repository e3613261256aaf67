package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Soniti94/paseoslugo/internal/models"
)

const (
	maxMessageLength = 2000
	inboxLimit       = 100
)

type messageStore interface {
	Create(ctx context.Context, senderID string, recipientID string, content string, bookingID *string) (*models.Message, error)
	GetByID(ctx context.Context, messageID string) (*models.Message, error)
	ListForParticipant(ctx context.Context, userID string, limit int) ([]models.MessageView, error)
	MarkRead(ctx context.Context, messageID string, recipientID string) (bool, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
}

type MessageService struct {
	messages messageStore
	users    userReader
}

func NewMessageService(messages messageStore, users userReader) *MessageService {
	return &MessageService{messages: messages, users: users}
}

func (s *MessageService) Send(
	ctx context.Context,
	senderID string,
	recipientID string,
	content string,
	bookingID *string,
) (*models.Message, error) {
	content = strings.TrimSpace(content)
	recipientID = strings.TrimSpace(recipientID)
	if content == "" || recipientID == "" {
		return nil, fmt.Errorf("%w: recipient_id and message are required", ErrInvalidInput)
	}
	if len(content) > maxMessageLength {
		return nil, fmt.Errorf("%w: message is too long", ErrInvalidInput)
	}
	if recipientID == senderID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrInvalidInput)
	}
	if bookingID != nil && strings.TrimSpace(*bookingID) == "" {
		bookingID = nil
	}

	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		return nil, fmt.Errorf("recipient %s: %w", recipientID, notFoundOr(err))
	}

	return s.messages.Create(ctx, senderID, recipientID, content, bookingID)
}

func (s *MessageService) List(ctx context.Context, userID string) ([]models.MessageView, error) {
	return s.messages.ListForParticipant(ctx, userID, inboxLimit)
}

// MarkRead is only allowed for the message's recipient.
func (s *MessageService) MarkRead(ctx context.Context, messageID string, readerID string) error {
	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return notFoundOr(err)
	}
	if message.RecipientID != readerID {
		return ErrForbidden
	}
	if message.Read {
		return nil
	}
	if _, err := s.messages.MarkRead(ctx, messageID, readerID); err != nil {
		return err
	}
	return nil
}

func (s *MessageService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.messages.CountUnread(ctx, userID)
}

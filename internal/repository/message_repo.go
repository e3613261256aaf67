package repository

import (
	"context"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/google/uuid"
)

const messageColumns = `id, sender_id, recipient_id, message, booking_id, read, created_at`

type MessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(
	ctx context.Context,
	senderID string,
	recipientID string,
	content string,
	bookingID *string,
) (*models.Message, error) {
	query := `
		INSERT INTO messages (id, sender_id, recipient_id, message, booking_id, read)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING ` + messageColumns
	return scanMessage(r.db.QueryRow(ctx, query, uuid.NewString(), senderID, recipientID, content, bookingID))
}

func (r *MessageRepository) GetByID(ctx context.Context, messageID string) (*models.Message, error) {
	return scanMessage(r.db.QueryRow(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, messageID))
}

func (r *MessageRepository) ListForParticipant(ctx context.Context, userID string, limit int) ([]models.MessageView, error) {
	query := `
		SELECT m.id, m.sender_id, m.recipient_id, m.message, m.booking_id, m.read, m.created_at,
			   s.name, s.picture, rc.name, rc.picture
		FROM messages m
		LEFT JOIN users s ON s.id = m.sender_id
		LEFT JOIN users rc ON rc.id = m.recipient_id
		WHERE m.sender_id = $1 OR m.recipient_id = $1
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.MessageView, 0)
	for rows.Next() {
		var view models.MessageView
		if err := rows.Scan(
			&view.ID,
			&view.SenderID,
			&view.RecipientID,
			&view.Message.Message,
			&view.BookingID,
			&view.Read,
			&view.CreatedAt,
			&view.SenderName,
			&view.SenderPicture,
			&view.RecipientName,
			&view.RecipientPicture,
		); err != nil {
			return nil, err
		}
		messages = append(messages, view)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

// MarkRead only touches messages addressed to recipientID.
func (r *MessageRepository) MarkRead(ctx context.Context, messageID string, recipientID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE messages SET read = TRUE WHERE id = $1 AND recipient_id = $2`, messageID, recipientID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *MessageRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND read = FALSE`, recipientID).Scan(&count)
	return count, err
}

func scanMessage(row rowScanner) (*models.Message, error) {
	var message models.Message
	err := row.Scan(
		&message.ID,
		&message.SenderID,
		&message.RecipientID,
		&message.Message,
		&message.BookingID,
		&message.Read,
		&message.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

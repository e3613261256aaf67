package models

import "time"

type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Message     string    `json:"message"`
	BookingID   *string   `json:"booking_id"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// MessageView carries the participants' display data alongside the message.
type MessageView struct {
	Message
	SenderName       *string `json:"sender_name,omitempty"`
	SenderPicture    *string `json:"sender_picture,omitempty"`
	RecipientName    *string `json:"recipient_name,omitempty"`
	RecipientPicture *string `json:"recipient_picture,omitempty"`
}

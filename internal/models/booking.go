package models

import "time"

type BookingStatus string

const (
	BookingPendingPayment BookingStatus = "pending_payment"
	BookingConfirmed      BookingStatus = "confirmed"
	BookingInProgress     BookingStatus = "in_progress"
	BookingCompleted      BookingStatus = "completed"
	BookingCancelled      BookingStatus = "cancelled"
)

// Terminal reports whether no further transition can leave the status.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

type ServiceType string

const (
	ServiceBasic    ServiceType = "basic"
	ServiceStandard ServiceType = "standard"
	ServicePremium  ServiceType = "premium"
	ServiceSpecial  ServiceType = "special"
)

type Booking struct {
	ID                string        `json:"id"`
	OwnerID           string        `json:"owner_id"`
	WalkerID          string        `json:"walker_id"`
	DogID             string        `json:"dog_id"`
	ServiceType       ServiceType   `json:"service_type"`
	Date              string        `json:"date"`
	Time              string        `json:"time"`
	Duration          int           `json:"duration"`
	Status            BookingStatus `json:"status"`
	Amount            float64       `json:"amount"`
	Location          *string       `json:"location"`
	Notes             *string       `json:"notes"`
	CancelledAt       *time.Time    `json:"cancelled_at,omitempty"`
	RefundAmount      *float64      `json:"refund_amount,omitempty"`
	RefundDescription *string       `json:"refund_description,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

// BookingDetail is a booking enriched with display names for listings.
type BookingDetail struct {
	Booking
	WalkerName *string `json:"walker_name,omitempty"`
	DogName    *string `json:"dog_name,omitempty"`
}

type ServicePackage struct {
	ID          ServiceType `json:"id"`
	Name        string      `json:"name"`
	Price       float64     `json:"price"`
	Duration    int         `json:"duration"`
	Description string      `json:"description"`
}

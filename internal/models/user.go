package models

import "time"

const (
	RoleOwner  = "owner"
	RoleWalker = "walker"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Picture      *string   `json:"picture"`
	Role         string    `json:"role"`
	PasswordHash *string   `json:"-"`
	Phone        *string   `json:"phone"`
	Address      *string   `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserSession struct {
	SessionToken string    `json:"session_token"`
	UserID       string    `json:"user_id"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

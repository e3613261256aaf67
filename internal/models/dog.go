package models

import "time"

type Dog struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Name         string    `json:"name"`
	Breed        *string   `json:"breed"`
	Size         string    `json:"size"`
	Age          *int      `json:"age"`
	SpecialNeeds []string  `json:"special_needs"`
	PhotoURL     *string   `json:"photo_url"`
	CreatedAt    time.Time `json:"created_at"`
}

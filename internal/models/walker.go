package models

import "time"

type Walker struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Bio             string    `json:"bio"`
	Specialties     []string  `json:"specialties"`
	ExperienceYears int       `json:"experience_years"`
	Rating          float64   `json:"rating"`
	ReviewsCount    int       `json:"reviews_count"`
	Availability    string    `json:"availability"`
	Location        string    `json:"location"`
	PriceFrom       float64   `json:"price_from"`
	IsVerified      bool      `json:"is_verified"`
	ProfileImage    *string   `json:"profile_image"`
	CreatedAt       time.Time `json:"created_at"`

	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Picture *string `json:"picture,omitempty"`
}

type WalkerWithScore struct {
	Walker
	MatchScore int `json:"match_score"`
}

package domain

import "time"

// Observation is a saved/bookmarked listing, unique per (user, apartment) pair.
type Observation struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ApartmentID string    `json:"apartment_id"`
	CreatedAt   time.Time `json:"created_at"`
}

package domain

import "time"

// Listing moderation states. A listing starts as pending unless its creator is
// an admin, and leaves pending only through moderation.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

func ValidModerationStatus(s string) bool {
	return s == StatusApproved || s == StatusRejected
}

type Apartment struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Price       float64           `json:"price"`
	OwnerID     string            `json:"owner_id"`
	Location    Location          `json:"location"`
	Status      string            `json:"status"`
	Features    map[string]string `json:"features,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	ModeratedBy *string           `json:"moderated_by,omitempty"`
	ModeratedAt *time.Time        `json:"moderated_at,omitempty"`
}

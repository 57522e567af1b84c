package dto

// Event payloads published to the broker. Keys follow the
// "<entity>.<action>" convention.
const (
	EventUserRegistered   = "user.registered"
	EventUserLoggedIn     = "user.logged_in"
	EventUserStatusSet    = "user.status_set"
	EventListingSubmitted = "listing.submitted"
	EventListingModerated = "listing.moderated"
)

type UserEvent struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Active *bool  `json:"active,omitempty"`
}

type ListingEvent struct {
	ApartmentID string `json:"apartment_id"`
	OwnerID     string `json:"owner_id"`
	Status      string `json:"status"`
	ModeratorID string `json:"moderator_id,omitempty"`
}

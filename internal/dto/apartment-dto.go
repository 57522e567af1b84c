package dto

type LocationInput struct {
	City        string `json:"city"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
}

type ApartmentCreate struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	Location    LocationInput `json:"location"`
}

// ApartmentUpdate is a partial patch. Nil fields are left untouched; a
// non-nil Location updates the existing location row in place, it never
// creates a new one.
type ApartmentUpdate struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Price       *float64       `json:"price,omitempty"`
	Location    *LocationInput `json:"location,omitempty"`
}

type ModerateRequest struct {
	Status string `json:"status"`
}

type CoordinatesInput struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type FeaturesUpdate struct {
	Features map[string]string `json:"features"`
}

package domain

// Location is a physical address. The (City, Street, HouseNumber) triple is the
// natural dedup key: creating a location first looks for an exact match.
type Location struct {
	ID          string    `json:"id"`
	City        string    `json:"city"`
	Street      string    `json:"street"`
	HouseNumber string    `json:"house_number"`
	Coordinates *GeoPoint `json:"coordinates,omitempty"`
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

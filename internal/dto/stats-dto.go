package dto

// SystemStats is computed the same way in every storage adapter: counts over
// the whole table, average price over approved listings only.
type SystemStats struct {
	TotalUsers         int64   `json:"total_users"`
	ActiveUsers        int64   `json:"active_users"`
	TotalApartments    int64   `json:"total_apartments"`
	PendingApartments  int64   `json:"pending_apartments"`
	ApprovedApartments int64   `json:"approved_apartments"`
	RejectedApartments int64   `json:"rejected_apartments"`
	AveragePrice       float64 `json:"average_price"`
	TotalOwners        int64   `json:"total_owners"`
}

type CityStats struct {
	City     string  `json:"city"`
	Count    int64   `json:"count"`
	AvgPrice float64 `json:"avg_price"`
}

package dto

// SearchFilter drives the listing search endpoint. Admin visibility is decided
// by the caller: IncludeUnmoderated is only ever set for admin actors.
type SearchFilter struct {
	Query              string
	MinPrice           *float64
	MaxPrice           *float64
	City               string
	SortBy             string // price_asc, price_desc, newest, oldest
	Limit              int
	Offset             int
	IncludeUnmoderated bool
}

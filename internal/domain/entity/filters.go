package entity

type SortKey string

const (
	SortByPrice   SortKey = "price"
	SortByRevenue SortKey = "revenue"
	SortByDate    SortKey = "date"
)

// AssetFilters is the browse criteria. A nil bound is unset and must not be
// treated as zero.
type AssetFilters struct {
	Category   Category `json:"category,omitempty"`
	MinPrice   *float64 `json:"minPrice,omitempty"`
	MaxPrice   *float64 `json:"maxPrice,omitempty"`
	MinRevenue *float64 `json:"minRevenue,omitempty"`
	SortBy     SortKey  `json:"sortBy,omitempty"`
}

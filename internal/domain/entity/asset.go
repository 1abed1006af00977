package entity

import "time"

type Category string

const (
	CategoryWebsite Category = "website"
	CategoryApp     Category = "app"
	CategoryDomain  Category = "domain"
	CategorySaaS    Category = "saas"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryWebsite, CategoryApp, CategoryDomain, CategorySaaS:
		return true
	}
	return false
}

type AssetStatus string

const (
	AssetStatusActive  AssetStatus = "active"
	AssetStatusPending AssetStatus = "pending"
	AssetStatusSold    AssetStatus = "sold"
)

type TrafficStats struct {
	MonthlyVisitors int64 `json:"monthlyVisitors"`
	PageViews       int64 `json:"pageViews"`
}

// DigitalAsset is the listing view model. Optional financials are nil when the
// seller never reported them; zero means a reported zero.
type DigitalAsset struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Category       Category     `json:"category"`
	Price          float64      `json:"price"`
	MonthlyRevenue *float64     `json:"monthlyRevenue,omitempty"`
	MonthlyProfit  *float64     `json:"monthlyProfit,omitempty"`
	TrafficStats   TrafficStats `json:"trafficStats"`
	CreatedAt      time.Time    `json:"createdAt"`
	Seller         User         `json:"seller"`
	Status         AssetStatus  `json:"status"`
}

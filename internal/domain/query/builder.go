package query

import "assetbazaar/internal/domain/entity"

// SearchLimit caps quick-search results.
const SearchLimit = 5

// BuildBrowse turns browse filters into a listing query. Only active assets
// are ever listed, whatever the filters say.
func BuildBrowse(f entity.AssetFilters) Query {
	q := From(Assets).Filter(Eq("status", string(entity.AssetStatusActive)))

	if f.Category != "" {
		q = q.Filter(Eq("category", string(f.Category)))
	}
	if f.MinPrice != nil {
		q = q.Filter(Gte("price", *f.MinPrice))
	}
	if f.MaxPrice != nil {
		q = q.Filter(Lte("price", *f.MaxPrice))
	}
	if f.MinRevenue != nil {
		q = q.Filter(Gte("monthly_revenue", *f.MinRevenue))
	}

	return q.Order(SortOrder(f.SortBy))
}

// BuildSearch matches the term against title and description of active assets,
// newest first.
func BuildSearch(term string) Query {
	return From(Assets).
		Filter(Eq("status", string(entity.AssetStatusActive))).
		Search(term, "title", "description").
		Order(Order{Field: "created_at", Desc: true}).
		Take(SearchLimit, 0)
}

// SortOrder maps a sort key to its ordering. Unknown keys sort by date.
func SortOrder(key entity.SortKey) Order {
	switch key {
	case entity.SortByPrice:
		return Order{Field: "price", Desc: true}
	case entity.SortByRevenue:
		return Order{Field: "monthly_revenue", Desc: true, NullsLast: true}
	default:
		return Order{Field: "created_at", Desc: true}
	}
}

package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetbazaar/internal/domain/entity"
)

func ptr(v float64) *float64 { return &v }

func TestBuildBrowse_CategoryOnly(t *testing.T) {
	for _, c := range []entity.Category{entity.CategoryWebsite, entity.CategoryApp, entity.CategoryDomain, entity.CategorySaaS} {
		q := BuildBrowse(entity.AssetFilters{Category: c})

		assert.Equal(t, Assets, q.Collection)
		assert.ElementsMatch(t, []Predicate{
			Eq("status", "active"),
			Eq("category", string(c)),
		}, q.Where)
		assert.Nil(t, q.Text)
		assert.Zero(t, q.Limit)
	}
}

func TestBuildBrowse_NoFiltersStillRestrictsToActive(t *testing.T) {
	q := BuildBrowse(entity.AssetFilters{})

	assert.Equal(t, []Predicate{Eq("status", "active")}, q.Where)
	assert.Equal(t, []Order{{Field: "created_at", Desc: true}}, q.OrderBy)
}

func TestBuildBrowse_ZeroIsAnExplicitBound(t *testing.T) {
	q := BuildBrowse(entity.AssetFilters{MinPrice: ptr(0), MinRevenue: ptr(0)})

	p, ok := q.Predicate("price")
	require.True(t, ok)
	assert.Equal(t, Gte("price", 0.0), p)

	p, ok = q.Predicate("monthly_revenue")
	require.True(t, ok)
	assert.Equal(t, Gte("monthly_revenue", 0.0), p)

	_, ok = BuildBrowse(entity.AssetFilters{}).Predicate("price")
	assert.False(t, ok)
}

func TestBuildBrowse_PriceRangeIsInclusive(t *testing.T) {
	q := BuildBrowse(entity.AssetFilters{MinPrice: ptr(100), MaxPrice: ptr(500)})

	assert.Contains(t, q.Where, Gte("price", 100.0))
	assert.Contains(t, q.Where, Lte("price", 500.0))

	for _, price := range []float64{100, 250, 500} {
		assert.True(t, Matches(q, Record{"status": "active", "price": price}), "price %v", price)
	}
	for _, price := range []float64{99.99, 500.01} {
		assert.False(t, Matches(q, Record{"status": "active", "price": price}), "price %v", price)
	}
	assert.False(t, Matches(q, Record{"status": "pending", "price": 200.0}))
}

func TestSortOrder(t *testing.T) {
	assert.Equal(t, Order{Field: "price", Desc: true}, SortOrder(entity.SortByPrice))
	assert.Equal(t, Order{Field: "monthly_revenue", Desc: true, NullsLast: true}, SortOrder(entity.SortByRevenue))
	assert.Equal(t, Order{Field: "created_at", Desc: true}, SortOrder(entity.SortByDate))
	assert.Equal(t, Order{Field: "created_at", Desc: true}, SortOrder("popularity"))
}

func TestBuildBrowse_RevenueSortPutsNullsLast(t *testing.T) {
	q := BuildBrowse(entity.AssetFilters{SortBy: entity.SortByRevenue})
	recs := []Record{
		{"id": "a", "status": "active", "monthly_revenue": nil},
		{"id": "b", "status": "active", "monthly_revenue": 1200.0},
		{"id": "c", "status": "active"},
		{"id": "d", "status": "active", "monthly_revenue": int64(18000)},
		{"id": "e", "status": "active", "monthly_revenue": 0.0},
	}

	got := Apply(q, recs)

	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r["id"].(string)
	}
	assert.Equal(t, []string{"d", "b", "e"}, ids[:3])
	assert.ElementsMatch(t, []string{"a", "c"}, ids[3:])
}

func TestBuildSearch(t *testing.T) {
	q := BuildSearch("shop")

	assert.Equal(t, []Predicate{Eq("status", "active")}, q.Where)
	require.NotNil(t, q.Text)
	assert.Equal(t, []string{"title", "description"}, q.Text.Fields)
	assert.Equal(t, SearchLimit, q.Limit)
	assert.Equal(t, []Order{{Field: "created_at", Desc: true}}, q.OrderBy)

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var recs []Record
	for i := 0; i < 8; i++ {
		recs = append(recs, Record{
			"id":          string(rune('a' + i)),
			"status":      "active",
			"title":       "Fashion SHOP",
			"description": "store",
			"created_at":  base.Add(time.Duration(i) * time.Hour),
		})
	}
	recs = append(recs, Record{"id": "z", "status": "active", "title": "Blog", "description": "a shopping blog", "created_at": base.Add(100 * time.Hour)})

	got := Apply(q, recs)
	require.Len(t, got, SearchLimit)
	assert.Equal(t, "z", got[0]["id"])
	assert.Equal(t, "h", got[1]["id"])
}

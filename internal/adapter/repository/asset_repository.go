package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/query"
	"assetbazaar/internal/domain/repository"
	"assetbazaar/internal/infrastructure/datastore"
	"assetbazaar/pkg/errors"
)

type assetRepository struct {
	store datastore.Store
}

func NewAssetRepository(store datastore.Store) repository.AssetRepository {
	return &assetRepository{store: store}
}

func (r *assetRepository) Find(ctx context.Context, q query.Query) ([]*entity.DigitalAsset, error) {
	recs, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, errors.Internal("Failed to load assets", err)
	}
	return r.withSellers(ctx, recs)
}

// withSellers joins asset rows with their seller profiles in one extra read.
func (r *assetRepository) withSellers(ctx context.Context, recs []query.Record) ([]*entity.DigitalAsset, error) {
	assets := make([]*entity.DigitalAsset, 0, len(recs))
	if len(recs) == 0 {
		return assets, nil
	}

	var ids []string
	seen := make(map[string]struct{})
	for _, rec := range recs {
		id := str(rec, "seller_id")
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	sellers := make(map[string]query.Record, len(ids))
	if len(ids) > 0 {
		profiles, err := r.store.Select(ctx, query.From(query.Profiles).Filter(query.In("id", ids...)))
		if err != nil {
			return nil, errors.Internal("Failed to load sellers", err)
		}
		for _, p := range profiles {
			sellers[str(p, "id")] = p
		}
	}

	for _, rec := range recs {
		asset := ToDigitalAsset(rec, sellers[str(rec, "seller_id")])
		assets = append(assets, &asset)
	}
	return assets, nil
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*entity.DigitalAsset, error) {
	rec, err := selectOne(ctx, r.store, query.From(query.Assets).Filter(query.Eq("id", id)))
	if err != nil {
		return nil, errors.Internal("Failed to get asset", err)
	}
	if rec == nil {
		return nil, errors.NotFound("Asset", nil)
	}

	assets, err := r.withSellers(ctx, []query.Record{rec})
	if err != nil {
		return nil, err
	}
	return assets[0], nil
}

func (r *assetRepository) Create(ctx context.Context, asset *entity.DigitalAsset) error {
	if asset.ID == "" {
		asset.ID = uuid.New().String()
	}
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now().UTC()
	}

	rec := query.Record{
		"id":               asset.ID,
		"seller_id":        asset.Seller.ID,
		"title":            asset.Title,
		"description":      asset.Description,
		"category":         string(asset.Category),
		"price":            asset.Price,
		"monthly_revenue":  optional(asset.MonthlyRevenue),
		"monthly_profit":   optional(asset.MonthlyProfit),
		"monthly_visitors": asset.TrafficStats.MonthlyVisitors,
		"page_views":       asset.TrafficStats.PageViews,
		"status":           string(asset.Status),
		"created_at":       asset.CreatedAt,
	}

	if _, err := r.store.Insert(ctx, datastore.Insert{Collection: query.Assets, Record: rec}); err != nil {
		return errors.Internal("Failed to create asset", err)
	}
	return nil
}

func (r *assetRepository) ListBySeller(ctx context.Context, sellerID string, status entity.AssetStatus, limit, offset int) ([]*entity.DigitalAsset, int64, error) {
	q := query.From(query.Assets).Filter(query.Eq("seller_id", sellerID))
	if status != "" {
		q = q.Filter(query.Eq("status", string(status)))
	}
	q = q.Order(query.Order{Field: "created_at", Desc: true})

	all, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, 0, errors.Internal("Failed to count assets", err)
	}
	total := int64(len(all))

	page, err := r.store.Select(ctx, q.Take(limit, offset))
	if err != nil {
		return nil, 0, errors.Internal("Failed to list assets", err)
	}

	assets, err := r.withSellers(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

func (r *assetRepository) Transition(ctx context.Context, id string, from, to entity.AssetStatus) (bool, error) {
	n, err := r.store.Update(ctx, query.Assets,
		query.Record{"status": string(to), "updated_at": time.Now().UTC()},
		[]query.Predicate{query.Eq("id", id), query.Eq("status", string(from))})
	if err != nil {
		return false, errors.Internal("Failed to update asset status", err)
	}
	return n > 0, nil
}

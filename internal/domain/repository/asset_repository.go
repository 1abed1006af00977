package repository

import (
	"context"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/query"
)

type AssetRepository interface {
	// Find runs q against assets and joins each row with its seller profile.
	Find(ctx context.Context, q query.Query) ([]*entity.DigitalAsset, error)
	GetByID(ctx context.Context, id string) (*entity.DigitalAsset, error)
	Create(ctx context.Context, asset *entity.DigitalAsset) error
	ListBySeller(ctx context.Context, sellerID string, status entity.AssetStatus, limit, offset int) ([]*entity.DigitalAsset, int64, error)
	// Transition moves an asset from one status to another and reports
	// whether it was still in the expected status.
	Transition(ctx context.Context, id string, from, to entity.AssetStatus) (bool, error)
}

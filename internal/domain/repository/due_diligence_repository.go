package repository

import (
	"context"

	"assetbazaar/internal/domain/entity"
)

type DueDiligenceRepository interface {
	FindRequest(ctx context.Context, assetID, buyerID string) (*entity.DueDiligenceRequest, error)
	GetRequest(ctx context.Context, id string) (*entity.DueDiligenceRequest, error)
	// CreateRequest stores the request together with its items, or nothing.
	CreateRequest(ctx context.Context, req *entity.DueDiligenceRequest) error
	CompleteRequest(ctx context.Context, id string) error

	ListItems(ctx context.Context, requestID string) ([]entity.VerificationItem, error)
	GetItem(ctx context.Context, id string) (*entity.VerificationItem, error)
	// ReviewItem sets the outcome of a pending item and reports whether it was still pending.
	ReviewItem(ctx context.Context, id string, status entity.VerificationStatus, notes string) (bool, error)
}

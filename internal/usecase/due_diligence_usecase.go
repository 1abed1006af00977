package usecase

import (
	"context"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/repository"
	"assetbazaar/internal/domain/service"
	"assetbazaar/pkg/errors"
	"assetbazaar/pkg/logger"
)

type DueDiligenceUseCase struct {
	ddRepo    repository.DueDiligenceRepository
	assetRepo repository.AssetRepository
}

func NewDueDiligenceUseCase(ddRepo repository.DueDiligenceRepository, assetRepo repository.AssetRepository) *DueDiligenceUseCase {
	return &DueDiligenceUseCase{
		ddRepo:    ddRepo,
		assetRepo: assetRepo,
	}
}

// OpenRequest returns the buyer's due diligence request for an asset with its
// checklist. A new request is stored together with the four default items.
func (uc *DueDiligenceUseCase) OpenRequest(ctx context.Context, identity *entity.Identity, assetID string) (*entity.DueDiligenceRequest, error) {
	asset, err := uc.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if err := service.CheckInteraction(identity, asset, service.ActionDueDiligence); err != nil {
		return nil, err
	}

	find := func(ctx context.Context) (*entity.DueDiligenceRequest, error) {
		return uc.ddRepo.FindRequest(ctx, asset.ID, identity.UserID)
	}
	create := func(ctx context.Context) (*entity.DueDiligenceRequest, error) {
		req := &entity.DueDiligenceRequest{
			AssetID: asset.ID,
			BuyerID: identity.UserID,
			Status:  entity.DueDiligencePending,
			Items:   entity.DefaultVerificationItems(),
		}
		if err := uc.ddRepo.CreateRequest(ctx, req); err != nil {
			return nil, err
		}
		return req, nil
	}

	req, err := lookupOrCreate(ctx, find, create)
	if err != nil {
		logger.Error("OpenRequest Error: %v", err)
		return nil, err
	}

	items, err := uc.ddRepo.ListItems(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	req.Items = items
	return req, nil
}

// ListItems is open to the requesting buyer and the asset's seller.
func (uc *DueDiligenceUseCase) ListItems(ctx context.Context, identity *entity.Identity, requestID string) ([]entity.VerificationItem, error) {
	if err := requireIdentity(identity, "Please sign in to request due diligence"); err != nil {
		return nil, err
	}
	req, err := uc.ddRepo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !identity.Is(req.BuyerID) {
		asset, err := uc.assetRepo.GetByID(ctx, req.AssetID)
		if err != nil {
			return nil, err
		}
		if !identity.Is(asset.Seller.ID) {
			return nil, errors.Forbidden("You do not have access to this due diligence request", nil)
		}
	}
	return uc.ddRepo.ListItems(ctx, requestID)
}

// UpdateItemStatus records the seller's outcome for a pending item. The
// request completes once no item is pending.
func (uc *DueDiligenceUseCase) UpdateItemStatus(ctx context.Context, identity *entity.Identity, itemID string, status entity.VerificationStatus, notes string) (*entity.VerificationItem, error) {
	if err := requireIdentity(identity, "Please sign in to update verification items"); err != nil {
		return nil, err
	}
	if status != entity.VerificationVerified && status != entity.VerificationRejected {
		return nil, errors.Validation("Status must be verified or rejected")
	}

	item, err := uc.ddRepo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	req, err := uc.ddRepo.GetRequest(ctx, item.RequestID)
	if err != nil {
		return nil, err
	}
	asset, err := uc.assetRepo.GetByID(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}
	if !identity.Is(asset.Seller.ID) {
		return nil, errors.Forbidden("Only the seller can update verification items", nil)
	}

	ok, err := uc.ddRepo.ReviewItem(ctx, itemID, status, notes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Conflict("Verification item has already been reviewed")
	}

	items, err := uc.ddRepo.ListItems(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !anyPending(items) {
		if err := uc.ddRepo.CompleteRequest(ctx, req.ID); err != nil {
			logger.Error("UpdateItemStatus Error: completing request %s: %v", req.ID, err)
		}
	}

	for i := range items {
		if items[i].ID == itemID {
			return &items[i], nil
		}
	}
	return uc.ddRepo.GetItem(ctx, itemID)
}

func anyPending(items []entity.VerificationItem) bool {
	for _, it := range items {
		if it.Status == entity.VerificationPending {
			return true
		}
	}
	return false
}

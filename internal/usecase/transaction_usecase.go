package usecase

import (
	"context"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/repository"
	"assetbazaar/internal/domain/service"
	"assetbazaar/pkg/errors"
	"assetbazaar/pkg/logger"
)

type TransactionUseCase struct {
	txRepo    repository.TransactionRepository
	assetRepo repository.AssetRepository
}

func NewTransactionUseCase(txRepo repository.TransactionRepository, assetRepo repository.AssetRepository) *TransactionUseCase {
	return &TransactionUseCase{
		txRepo:    txRepo,
		assetRepo: assetRepo,
	}
}

// Purchase reserves an active asset for the buyer and opens a pending escrow
// transaction for its full price. The asset goes back on sale if the
// transaction cannot be recorded.
func (uc *TransactionUseCase) Purchase(ctx context.Context, identity *entity.Identity, assetID string, agreedToTerms bool) (*entity.Transaction, error) {
	asset, err := uc.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if err := service.CheckInteraction(identity, asset, service.ActionPurchase); err != nil {
		return nil, err
	}
	if !agreedToTerms {
		return nil, errors.Validation("Please agree to the terms and conditions")
	}
	if asset.Status != entity.AssetStatusActive {
		return nil, errors.Conflict("Asset is no longer available")
	}

	reserved, err := uc.assetRepo.Transition(ctx, asset.ID, entity.AssetStatusActive, entity.AssetStatusPending)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, errors.Conflict("Asset is no longer available")
	}

	tx := &entity.Transaction{
		AssetID:  asset.ID,
		BuyerID:  identity.UserID,
		SellerID: asset.Seller.ID,
		Amount:   asset.Price,
		Status:   entity.TransactionPending,
	}
	if err := uc.txRepo.Create(ctx, tx); err != nil {
		logger.Error("Purchase Error: %v", err)
		if _, revertErr := uc.assetRepo.Transition(ctx, asset.ID, entity.AssetStatusPending, entity.AssetStatusActive); revertErr != nil {
			logger.Error("Purchase Error: releasing asset %s: %v", asset.ID, revertErr)
		}
		return nil, err
	}
	return tx, nil
}

// Complete is the buyer confirming the handover. The asset is marked sold;
// if it is no longer reserved the transaction is put back to pending.
func (uc *TransactionUseCase) Complete(ctx context.Context, identity *entity.Identity, transactionID string) (*entity.Transaction, error) {
	if err := requireIdentity(identity, "Please sign in to manage transactions"); err != nil {
		return nil, err
	}
	tx, err := uc.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !identity.Is(tx.BuyerID) {
		return nil, errors.Forbidden("Only the buyer can confirm the transfer", nil)
	}

	if err := uc.transition(ctx, tx, entity.TransactionCompleted); err != nil {
		return nil, err
	}
	sold, err := uc.assetRepo.Transition(ctx, tx.AssetID, entity.AssetStatusPending, entity.AssetStatusSold)
	if err == nil && !sold {
		err = errors.Conflict("Asset is no longer reserved for this transaction")
	}
	if err != nil {
		logger.Error("Complete Error: asset %s not marked sold: %v", tx.AssetID, err)
		if _, revertErr := uc.txRepo.Transition(ctx, tx.ID, entity.TransactionCompleted, entity.TransactionPending); revertErr != nil {
			logger.Error("Complete Error: reverting transaction %s: %v", tx.ID, revertErr)
		}
		return nil, err
	}
	return uc.txRepo.GetByID(ctx, tx.ID)
}

// Cancel is available to either party while the transaction is pending. The
// asset goes back on sale.
func (uc *TransactionUseCase) Cancel(ctx context.Context, identity *entity.Identity, transactionID string) (*entity.Transaction, error) {
	if err := requireIdentity(identity, "Please sign in to manage transactions"); err != nil {
		return nil, err
	}
	tx, err := uc.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !identity.Is(tx.BuyerID) && !identity.Is(tx.SellerID) {
		return nil, errors.Forbidden("You are not part of this transaction", nil)
	}

	if err := uc.transition(ctx, tx, entity.TransactionCancelled); err != nil {
		return nil, err
	}
	if ok, err := uc.assetRepo.Transition(ctx, tx.AssetID, entity.AssetStatusPending, entity.AssetStatusActive); err != nil || !ok {
		logger.Error("Cancel Error: asset %s not released (updated=%v): %v", tx.AssetID, ok, err)
	}
	return uc.txRepo.GetByID(ctx, tx.ID)
}

func (uc *TransactionUseCase) transition(ctx context.Context, tx *entity.Transaction, to entity.TransactionStatus) error {
	ok, err := uc.txRepo.Transition(ctx, tx.ID, entity.TransactionPending, to)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Conflict("Transaction is no longer pending")
	}
	return nil
}

func (uc *TransactionUseCase) ListMine(ctx context.Context, identity *entity.Identity, status entity.TransactionStatus) ([]*entity.Transaction, error) {
	if err := requireIdentity(identity, "Please sign in to see your transactions"); err != nil {
		return nil, err
	}
	return uc.txRepo.ListByParticipant(ctx, identity.UserID, status)
}

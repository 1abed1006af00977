package usecase

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/repository"
	"assetbazaar/pkg/errors"
)

type failingTxRepo struct {
	repository.TransactionRepository
}

func (failingTxRepo) Create(context.Context, *entity.Transaction) error {
	return stderrors.New("write failed")
}

func TestTransactionUseCase_PurchaseReservesAsset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asset := f.seedAsset(t, "seller", 1500, entity.AssetStatusActive)

	tx, err := f.txUC.Purchase(ctx, as("buyer"), asset.ID, true)
	require.NoError(t, err)

	assert.Equal(t, 1500.0, tx.Amount)
	assert.Equal(t, entity.TransactionPending, tx.Status)
	assert.Equal(t, "seller", tx.SellerID)

	stored, err := f.assets.GetByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusPending, stored.Status)

	_, err = f.txUC.Purchase(ctx, as("other-buyer"), asset.ID, true)
	assert.True(t, errors.Is(err, "CONFLICT"))
}

func TestTransactionUseCase_PurchaseRequiresTerms(t *testing.T) {
	f := newFixture(t)
	asset := f.seedAsset(t, "seller", 100, entity.AssetStatusActive)
	before := f.store.Stats()

	_, err := f.txUC.Purchase(context.Background(), as("buyer"), asset.ID, false)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Please agree to the terms and conditions", appErr.Message)
	after := f.store.Stats()
	assert.Equal(t, before.Inserts, after.Inserts)
	assert.Equal(t, before.Updates, after.Updates)
}

func TestTransactionUseCase_SellerCannotBuyOwnAsset(t *testing.T) {
	f := newFixture(t)
	asset := f.seedAsset(t, "seller", 100, entity.AssetStatusActive)

	_, err := f.txUC.Purchase(context.Background(), as("seller"), asset.ID, true)

	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestTransactionUseCase_PurchaseReleasesAssetWhenCreateFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asset := f.seedAsset(t, "seller", 100, entity.AssetStatusActive)
	uc := NewTransactionUseCase(failingTxRepo{f.txs}, f.assets)

	_, err := uc.Purchase(ctx, as("buyer"), asset.ID, true)
	require.Error(t, err)

	stored, err := f.assets.GetByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusActive, stored.Status)
}

func TestTransactionUseCase_CompleteMarksSold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asset := f.seedAsset(t, "seller", 100, entity.AssetStatusActive)
	tx, err := f.txUC.Purchase(ctx, as("buyer"), asset.ID, true)
	require.NoError(t, err)

	_, err = f.txUC.Complete(ctx, as("seller"), tx.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	done, err := f.txUC.Complete(ctx, as("buyer"), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionCompleted, done.Status)

	stored, err := f.assets.GetByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusSold, stored.Status)

	_, err = f.txUC.Cancel(ctx, as("buyer"), tx.ID)
	assert.True(t, errors.Is(err, "CONFLICT"))
}

func TestTransactionUseCase_CancelReleasesAsset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asset := f.seedAsset(t, "seller", 100, entity.AssetStatusActive)
	tx, err := f.txUC.Purchase(ctx, as("buyer"), asset.ID, true)
	require.NoError(t, err)

	cancelled, err := f.txUC.Cancel(ctx, as("seller"), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionCancelled, cancelled.Status)

	stored, err := f.assets.GetByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusActive, stored.Status)

	mine, err := f.txUC.ListMine(ctx, as("buyer"), "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, tx.ID, mine[0].ID)
}

func TestTransactionUseCase_ApproveKeepsReservedAssetOffSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asset := f.seedAsset(t, "seller", 900, entity.AssetStatusActive)

	tx, err := f.txUC.Purchase(ctx, as("buyer"), asset.ID, true)
	require.NoError(t, err)

	_, err = f.assetUC.Approve(ctx, asset.ID)
	assert.True(t, errors.Is(err, errors.CodeConflict))

	stored, err := f.assets.GetByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusPending, stored.Status)

	_, err = f.txUC.Purchase(ctx, as("second-buyer"), asset.ID, true)
	assert.True(t, errors.Is(err, errors.CodeConflict))

	_, err = f.txUC.Complete(ctx, as("buyer"), tx.ID)
	require.NoError(t, err)

	stored, err = f.assets.GetByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusSold, stored.Status)
}

func TestTransactionUseCase_CompleteRequiresReservedAsset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asset := f.seedAsset(t, "seller", 900, entity.AssetStatusActive)

	tx, err := f.txUC.Purchase(ctx, as("buyer"), asset.ID, true)
	require.NoError(t, err)

	released, err := f.assets.Transition(ctx, asset.ID, entity.AssetStatusPending, entity.AssetStatusActive)
	require.NoError(t, err)
	require.True(t, released)

	_, err = f.txUC.Complete(ctx, as("buyer"), tx.ID)
	assert.True(t, errors.Is(err, errors.CodeConflict))

	stored, err := f.txs.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionPending, stored.Status)

	asset2, err := f.assets.GetByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusActive, asset2.Status)
}

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

type transactionRepository struct {
	store datastore.Store
}

func NewTransactionRepository(store datastore.Store) repository.TransactionRepository {
	return &transactionRepository{store: store}
}

func (r *transactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now

	rec := query.Record{
		"id":         tx.ID,
		"asset_id":   tx.AssetID,
		"buyer_id":   tx.BuyerID,
		"seller_id":  tx.SellerID,
		"amount":     tx.Amount,
		"status":     string(tx.Status),
		"created_at": tx.CreatedAt,
		"updated_at": tx.UpdatedAt,
	}
	if _, err := r.store.Insert(ctx, datastore.Insert{Collection: query.Transactions, Record: rec}); err != nil {
		return errors.Internal("Failed to create transaction", err)
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	rec, err := selectOne(ctx, r.store, query.From(query.Transactions).Filter(query.Eq("id", id)))
	if err != nil {
		return nil, errors.Internal("Failed to get transaction", err)
	}
	if rec == nil {
		return nil, errors.NotFound("Transaction", nil)
	}
	return ToTransaction(rec), nil
}

func (r *transactionRepository) ListByParticipant(ctx context.Context, userID string, status entity.TransactionStatus) ([]*entity.Transaction, error) {
	q := query.From(query.Transactions)
	if status != "" {
		q = q.Filter(query.Eq("status", string(status)))
	}

	recs, err := selectEither(ctx, r.store, q, userID, "buyer_id", "seller_id")
	if err != nil {
		return nil, errors.Internal("Failed to list transactions", err)
	}
	txs := make([]*entity.Transaction, 0, len(recs))
	for _, rec := range recs {
		txs = append(txs, ToTransaction(rec))
	}
	return txs, nil
}

func (r *transactionRepository) ListByAsset(ctx context.Context, assetID string, status entity.TransactionStatus) ([]*entity.Transaction, error) {
	q := query.From(query.Transactions).Filter(query.Eq("asset_id", assetID))
	if status != "" {
		q = q.Filter(query.Eq("status", string(status)))
	}

	recs, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, errors.Internal("Failed to list transactions", err)
	}
	txs := make([]*entity.Transaction, 0, len(recs))
	for _, rec := range recs {
		txs = append(txs, ToTransaction(rec))
	}
	return txs, nil
}

func (r *transactionRepository) Transition(ctx context.Context, id string, from, to entity.TransactionStatus) (bool, error) {
	n, err := r.store.Update(ctx, query.Transactions,
		query.Record{"status": string(to), "updated_at": time.Now().UTC()},
		[]query.Predicate{query.Eq("id", id), query.Eq("status", string(from))})
	if err != nil {
		return false, errors.Internal("Failed to update transaction", err)
	}
	return n > 0, nil
}

package repository

import (
	"context"

	"assetbazaar/internal/domain/entity"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	ListByParticipant(ctx context.Context, userID string, status entity.TransactionStatus) ([]*entity.Transaction, error)
	ListByAsset(ctx context.Context, assetID string, status entity.TransactionStatus) ([]*entity.Transaction, error)
	Transition(ctx context.Context, id string, from, to entity.TransactionStatus) (bool, error)
}

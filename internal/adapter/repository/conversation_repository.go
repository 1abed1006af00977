package repository

import (
	"context"
	stderrors "errors"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/query"
	"assetbazaar/internal/domain/repository"
	"assetbazaar/internal/infrastructure/datastore"
	"assetbazaar/pkg/errors"
)

type conversationRepository struct {
	store datastore.Store
}

func NewConversationRepository(store datastore.Store) repository.ConversationRepository {
	return &conversationRepository{store: store}
}

func (r *conversationRepository) FindByKey(ctx context.Context, key entity.ConversationKey) (*entity.Conversation, error) {
	q := query.From(query.Conversations).Filter(
		query.Eq("asset_id", key.AssetID),
		query.Eq("buyer_id", key.BuyerID),
		query.Eq("seller_id", key.SellerID),
	)
	rec, err := selectOne(ctx, r.store, q)
	if err != nil {
		return nil, errors.Internal("Failed to look up conversation", err)
	}
	if rec == nil {
		return nil, nil
	}
	return ToConversation(rec), nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	rec, err := selectOne(ctx, r.store, query.From(query.Conversations).Filter(query.Eq("id", id)))
	if err != nil {
		return nil, errors.Internal("Failed to get conversation", err)
	}
	if rec == nil {
		return nil, errors.NotFound("Conversation", nil)
	}
	return ToConversation(rec), nil
}

func (r *conversationRepository) Create(ctx context.Context, conv *entity.Conversation) error {
	rec := query.Record{
		"asset_id":  conv.AssetID,
		"buyer_id":  conv.BuyerID,
		"seller_id": conv.SellerID,
	}
	if conv.ID != "" {
		rec["id"] = conv.ID
	}

	stored, err := r.store.Insert(ctx, datastore.Insert{Collection: query.Conversations, Record: rec})
	if stderrors.Is(err, datastore.ErrConflict) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return errors.Internal("Failed to create conversation", err)
	}

	*conv = *ToConversation(stored[0])
	return nil
}

// ListByParticipant returns conversations on either side, newest first.
func (r *conversationRepository) ListByParticipant(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	recs, err := selectEither(ctx, r.store, query.From(query.Conversations), userID, "buyer_id", "seller_id")
	if err != nil {
		return nil, errors.Internal("Failed to list conversations", err)
	}
	convs := make([]*entity.Conversation, 0, len(recs))
	for _, rec := range recs {
		convs = append(convs, ToConversation(rec))
	}
	return convs, nil
}

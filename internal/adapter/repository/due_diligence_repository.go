package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/query"
	"assetbazaar/internal/domain/repository"
	"assetbazaar/internal/infrastructure/datastore"
	"assetbazaar/pkg/errors"
)

type dueDiligenceRepository struct {
	store datastore.Store
}

func NewDueDiligenceRepository(store datastore.Store) repository.DueDiligenceRepository {
	return &dueDiligenceRepository{store: store}
}

func (r *dueDiligenceRepository) FindRequest(ctx context.Context, assetID, buyerID string) (*entity.DueDiligenceRequest, error) {
	q := query.From(query.DueDiligenceRequests).Filter(
		query.Eq("asset_id", assetID),
		query.Eq("buyer_id", buyerID),
	)
	rec, err := selectOne(ctx, r.store, q)
	if err != nil {
		return nil, errors.Internal("Failed to look up due diligence request", err)
	}
	if rec == nil {
		return nil, nil
	}
	return ToDueDiligenceRequest(rec), nil
}

func (r *dueDiligenceRepository) GetRequest(ctx context.Context, id string) (*entity.DueDiligenceRequest, error) {
	rec, err := selectOne(ctx, r.store, query.From(query.DueDiligenceRequests).Filter(query.Eq("id", id)))
	if err != nil {
		return nil, errors.Internal("Failed to get due diligence request", err)
	}
	if rec == nil {
		return nil, errors.NotFound("Due diligence request", nil)
	}
	return ToDueDiligenceRequest(rec), nil
}

func (r *dueDiligenceRepository) CreateRequest(ctx context.Context, req *entity.DueDiligenceRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	req.CreatedAt = now

	inserts := []datastore.Insert{{
		Collection: query.DueDiligenceRequests,
		Record: query.Record{
			"id":         req.ID,
			"asset_id":   req.AssetID,
			"buyer_id":   req.BuyerID,
			"status":     req.Status,
			"created_at": now,
		},
	}}
	for i := range req.Items {
		item := &req.Items[i]
		item.ID = uuid.New().String()
		item.RequestID = req.ID
		item.CreatedAt = now
		inserts = append(inserts, datastore.Insert{
			Collection: query.VerificationItems,
			Record: query.Record{
				"id":          item.ID,
				"request_id":  req.ID,
				"type":        string(item.Type),
				"title":       item.Title,
				"description": item.Description,
				"status":      string(item.Status),
				"notes":       item.Notes,
				"created_at":  now,
			},
		})
	}

	_, err := r.store.Insert(ctx, inserts...)
	if stderrors.Is(err, datastore.ErrConflict) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return errors.Internal("Failed to create due diligence request", err)
	}
	return nil
}

func (r *dueDiligenceRepository) CompleteRequest(ctx context.Context, id string) error {
	_, err := r.store.Update(ctx, query.DueDiligenceRequests,
		query.Record{"status": entity.DueDiligenceCompleted},
		[]query.Predicate{query.Eq("id", id), query.Eq("status", entity.DueDiligencePending)})
	if err != nil {
		return errors.Internal("Failed to complete due diligence request", err)
	}
	return nil
}

// ListItems orders by type after creation time; items of one request share
// a timestamp and the types sort in checklist order.
func (r *dueDiligenceRepository) ListItems(ctx context.Context, requestID string) ([]entity.VerificationItem, error) {
	q := query.From(query.VerificationItems).
		Filter(query.Eq("request_id", requestID)).
		Order(query.Order{Field: "created_at"}, query.Order{Field: "type"})

	recs, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, errors.Internal("Failed to load verification items", err)
	}
	items := make([]entity.VerificationItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, ToVerificationItem(rec))
	}
	return items, nil
}

func (r *dueDiligenceRepository) GetItem(ctx context.Context, id string) (*entity.VerificationItem, error) {
	rec, err := selectOne(ctx, r.store, query.From(query.VerificationItems).Filter(query.Eq("id", id)))
	if err != nil {
		return nil, errors.Internal("Failed to get verification item", err)
	}
	if rec == nil {
		return nil, errors.NotFound("Verification item", nil)
	}
	item := ToVerificationItem(rec)
	return &item, nil
}

func (r *dueDiligenceRepository) ReviewItem(ctx context.Context, id string, status entity.VerificationStatus, notes string) (bool, error) {
	n, err := r.store.Update(ctx, query.VerificationItems,
		query.Record{"status": string(status), "notes": notes, "updated_at": time.Now().UTC()},
		[]query.Predicate{query.Eq("id", id), query.Eq("status", string(entity.VerificationPending))})
	if err != nil {
		return false, errors.Internal("Failed to update verification item", err)
	}
	return n > 0, nil
}

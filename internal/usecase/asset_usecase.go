package usecase

import (
	"context"
	"math"
	"strings"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/query"
	"assetbazaar/internal/domain/repository"
	"assetbazaar/internal/infrastructure/ratelimit"
	"assetbazaar/pkg/errors"
	"assetbazaar/pkg/logger"
)

type AssetUseCase struct {
	assetRepo   repository.AssetRepository
	txRepo      repository.TransactionRepository
	rateLimiter *ratelimit.RateLimiter
}

func NewAssetUseCase(assetRepo repository.AssetRepository, txRepo repository.TransactionRepository, rateLimiter *ratelimit.RateLimiter) *AssetUseCase {
	return &AssetUseCase{
		assetRepo:   assetRepo,
		txRepo:      txRepo,
		rateLimiter: rateLimiter,
	}
}

type CreateListingInput struct {
	Title           string
	Description     string
	Category        entity.Category
	Price           float64
	MonthlyRevenue  *float64
	MonthlyProfit   *float64
	MonthlyVisitors int64
	PageViews       int64
}

func (uc *AssetUseCase) Browse(ctx context.Context, filters entity.AssetFilters) ([]*entity.DigitalAsset, error) {
	if filters.Category != "" && !filters.Category.Valid() {
		return nil, errors.Validation("Invalid category")
	}
	for _, bound := range []*float64{filters.MinPrice, filters.MaxPrice, filters.MinRevenue} {
		if bound != nil && !finite(*bound) {
			return nil, errors.Validation("Filter bounds must be finite numbers")
		}
	}
	return uc.assetRepo.Find(ctx, query.BuildBrowse(filters))
}

// Search returns at most five active assets matching term. A blank term
// matches nothing and never reaches the backend.
func (uc *AssetUseCase) Search(ctx context.Context, term string) ([]*entity.DigitalAsset, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []*entity.DigitalAsset{}, nil
	}
	return uc.assetRepo.Find(ctx, query.BuildSearch(term))
}

func (uc *AssetUseCase) Get(ctx context.Context, id string) (*entity.DigitalAsset, error) {
	return uc.assetRepo.GetByID(ctx, id)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validateListing(input CreateListingInput) error {
	switch {
	case !finite(input.Price) ||
		(input.MonthlyRevenue != nil && !finite(*input.MonthlyRevenue)) ||
		(input.MonthlyProfit != nil && !finite(*input.MonthlyProfit)):
		return errors.Validation("Amounts must be finite numbers")
	case strings.TrimSpace(input.Title) == "":
		return errors.Validation("Title is required")
	case strings.TrimSpace(input.Description) == "":
		return errors.Validation("Description is required")
	case !input.Category.Valid():
		return errors.Validation("Invalid category")
	case input.Price <= 0:
		return errors.Validation("Price must be greater than zero")
	case input.MonthlyRevenue != nil && *input.MonthlyRevenue < 0:
		return errors.Validation("Monthly revenue cannot be negative")
	case input.MonthlyProfit != nil && *input.MonthlyProfit < 0:
		return errors.Validation("Monthly profit cannot be negative")
	case input.MonthlyVisitors < 0 || input.PageViews < 0:
		return errors.Validation("Traffic numbers cannot be negative")
	}
	return nil
}

// CreateListing stores a new listing awaiting review.
func (uc *AssetUseCase) CreateListing(ctx context.Context, identity *entity.Identity, input CreateListingInput) (*entity.DigitalAsset, error) {
	if err := requireIdentity(identity, "You must be logged in to create a listing"); err != nil {
		return nil, err
	}
	if err := validateListing(input); err != nil {
		return nil, err
	}
	if err := allow(uc.rateLimiter, identity.UserID, ratelimit.ActionCreateListing, "Too many listings. Please wait before creating another one"); err != nil {
		return nil, err
	}

	asset := &entity.DigitalAsset{
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Category:       input.Category,
		Price:          input.Price,
		MonthlyRevenue: input.MonthlyRevenue,
		MonthlyProfit:  input.MonthlyProfit,
		TrafficStats: entity.TrafficStats{
			MonthlyVisitors: input.MonthlyVisitors,
			PageViews:       input.PageViews,
		},
		Status: entity.AssetStatusPending,
		Seller: entity.User{ID: identity.UserID},
	}

	if err := uc.assetRepo.Create(ctx, asset); err != nil {
		logger.Error("CreateListing Error: %v", err)
		return nil, err
	}
	return asset, nil
}

func (uc *AssetUseCase) ListMine(ctx context.Context, identity *entity.Identity, status entity.AssetStatus, limit, offset int) ([]*entity.DigitalAsset, int64, error) {
	if err := requireIdentity(identity, "Please sign in to see your listings"); err != nil {
		return nil, 0, err
	}
	return uc.assetRepo.ListBySeller(ctx, identity.UserID, status, limit, offset)
}

// Approve publishes a listing that is awaiting review. A pending asset with
// an open purchase is reserved, not awaiting review, and stays off sale.
func (uc *AssetUseCase) Approve(ctx context.Context, id string) (*entity.DigitalAsset, error) {
	if _, err := uc.assetRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	open, err := uc.txRepo.ListByAsset(ctx, id, entity.TransactionPending)
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		return nil, errors.Conflict("Asset is reserved by a pending purchase")
	}

	ok, err := uc.assetRepo.Transition(ctx, id, entity.AssetStatusPending, entity.AssetStatusActive)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Conflict("Asset is not awaiting approval")
	}
	return uc.assetRepo.GetByID(ctx, id)
}

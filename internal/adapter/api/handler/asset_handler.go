package handler

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/usecase"
	"assetbazaar/pkg/errors"
	"assetbazaar/pkg/logger"
	"assetbazaar/pkg/response"
	"assetbazaar/pkg/utils"
)

type AssetHandler struct {
	assetUseCase *usecase.AssetUseCase
}

func NewAssetHandler(assetUseCase *usecase.AssetUseCase) *AssetHandler {
	return &AssetHandler{
		assetUseCase: assetUseCase,
	}
}

type createListingRequest struct {
	Title           string   `json:"title" validate:"required"`
	Description     string   `json:"description" validate:"required"`
	Category        string   `json:"category" validate:"required,oneof=website app domain saas"`
	Price           float64  `json:"price" validate:"required,gt=0"`
	MonthlyRevenue  *float64 `json:"monthly_revenue" validate:"omitempty,gte=0"`
	MonthlyProfit   *float64 `json:"monthly_profit" validate:"omitempty,gte=0"`
	MonthlyVisitors int64    `json:"monthly_visitors" validate:"gte=0"`
	PageViews       int64    `json:"page_views" validate:"gte=0"`
}

func optionalFloat(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.BadRequest("Invalid "+name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, errors.BadRequest("Invalid "+name, nil)
	}
	return &v, nil
}

// Browse lists active assets. Unset bounds are left nil rather than zero.
func (h *AssetHandler) Browse(c echo.Context) error {
	filters := entity.AssetFilters{
		Category: entity.Category(c.QueryParam("category")),
		SortBy:   entity.SortKey(c.QueryParam("sort")),
	}

	var err error
	if filters.MinPrice, err = optionalFloat(c, "min_price"); err != nil {
		return response.Error(c, err)
	}
	if filters.MaxPrice, err = optionalFloat(c, "max_price"); err != nil {
		return response.Error(c, err)
	}
	if filters.MinRevenue, err = optionalFloat(c, "min_revenue"); err != nil {
		return response.Error(c, err)
	}

	assets, err := h.assetUseCase.Browse(c.Request().Context(), filters)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, assets)
}

// Search never fails from the caller's point of view: backend errors are
// logged and an empty list is returned.
func (h *AssetHandler) Search(c echo.Context) error {
	assets, err := h.assetUseCase.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		logger.BestEffort().Report("search", err)
		assets = []*entity.DigitalAsset{}
	}
	return response.Success(c, assets)
}

func (h *AssetHandler) GetAsset(c echo.Context) error {
	asset, err := h.assetUseCase.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, asset)
}

func (h *AssetHandler) CreateListing(c echo.Context) error {
	var req createListingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	asset, err := h.assetUseCase.CreateListing(c.Request().Context(), identity(c), usecase.CreateListingInput{
		Title:           req.Title,
		Description:     req.Description,
		Category:        entity.Category(req.Category),
		Price:           req.Price,
		MonthlyRevenue:  req.MonthlyRevenue,
		MonthlyProfit:   req.MonthlyProfit,
		MonthlyVisitors: req.MonthlyVisitors,
		PageViews:       req.PageViews,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, asset)
}

func (h *AssetHandler) ListMine(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	assets, total, err := h.assetUseCase.ListMine(
		c.Request().Context(),
		identity(c),
		entity.AssetStatus(c.QueryParam("status")),
		pagination.PageSize,
		pagination.Offset,
	)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, assets, total, pagination.Page, pagination.PageSize)
}

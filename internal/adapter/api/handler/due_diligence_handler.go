package handler

import (
	"github.com/labstack/echo/v4"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/usecase"
	"assetbazaar/pkg/response"
)

type DueDiligenceHandler struct {
	dueDiligenceUseCase *usecase.DueDiligenceUseCase
}

func NewDueDiligenceHandler(dueDiligenceUseCase *usecase.DueDiligenceUseCase) *DueDiligenceHandler {
	return &DueDiligenceHandler{
		dueDiligenceUseCase: dueDiligenceUseCase,
	}
}

type updateItemRequest struct {
	Status string `json:"status" validate:"required,oneof=verified rejected"`
	Notes  string `json:"notes" validate:"max=2000"`
}

func (h *DueDiligenceHandler) OpenRequest(c echo.Context) error {
	req, err := h.dueDiligenceUseCase.OpenRequest(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, req)
}

func (h *DueDiligenceHandler) ListItems(c echo.Context) error {
	items, err := h.dueDiligenceUseCase.ListItems(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, items)
}

func (h *DueDiligenceHandler) UpdateItem(c echo.Context) error {
	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	item, err := h.dueDiligenceUseCase.UpdateItemStatus(
		c.Request().Context(),
		identity(c),
		c.Param("id"),
		entity.VerificationStatus(req.Status),
		req.Notes,
	)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, item)
}

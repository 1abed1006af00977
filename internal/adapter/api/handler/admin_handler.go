package handler

import (
	"github.com/labstack/echo/v4"

	"assetbazaar/internal/usecase"
	"assetbazaar/pkg/logger"
	"assetbazaar/pkg/response"
)

type AdminHandler struct {
	assetUseCase *usecase.AssetUseCase
}

func NewAdminHandler(assetUseCase *usecase.AssetUseCase) *AdminHandler {
	return &AdminHandler{
		assetUseCase: assetUseCase,
	}
}

// ApproveAsset puts a pending listing on sale.
func (h *AdminHandler) ApproveAsset(c echo.Context) error {
	asset, err := h.assetUseCase.Approve(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	logger.Info("Asset %s approved by %s", asset.ID, c.Get("uid"))
	return response.Success(c, asset)
}

package router

import (
	"github.com/labstack/echo/v4"

	"assetbazaar/internal/adapter/api/handler"
	"assetbazaar/internal/adapter/api/middleware"
)

func SetupDueDiligenceRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	dueDiligenceHandler := handler.GetDueDiligenceHandler()

	e.GET("/v1/due-diligence/:id/items", dueDiligenceHandler.ListItems, authMiddleware.Authenticate)
	e.PUT("/v1/verification-items/:id", dueDiligenceHandler.UpdateItem, authMiddleware.Authenticate)
}

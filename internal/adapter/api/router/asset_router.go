package router

import (
	"github.com/labstack/echo/v4"

	"assetbazaar/internal/adapter/api/handler"
	"assetbazaar/internal/adapter/api/middleware"
	"assetbazaar/internal/infrastructure/ratelimit"
)

func SetupAssetRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	assetHandler := handler.GetAssetHandler()
	chatHandler := handler.GetChatHandler()
	dueDiligenceHandler := handler.GetDueDiligenceHandler()
	transactionHandler := handler.GetTransactionHandler()

	assets := e.Group("/v1/assets")
	assets.GET("", assetHandler.Browse)
	assets.GET("/search", assetHandler.Search, authMiddleware.Optional, middleware.RateLimit(limiter, ratelimit.ActionSearch))
	assets.GET("/:id", assetHandler.GetAsset)

	assets.POST("/:id/purchase", transactionHandler.Purchase, authMiddleware.Authenticate)
	assets.POST("/:id/conversations", chatHandler.OpenConversation, authMiddleware.Authenticate)
	assets.POST("/:id/due-diligence", dueDiligenceHandler.OpenRequest, authMiddleware.Authenticate)

	mine := e.Group("/v1/my-assets")
	mine.Use(authMiddleware.Authenticate)
	mine.GET("", assetHandler.ListMine)
	mine.POST("", assetHandler.CreateListing)
}

package router

import (
	"github.com/labstack/echo/v4"

	"assetbazaar/internal/adapter/api/handler"
	"assetbazaar/internal/adapter/api/middleware"
)

func SetupTransactionRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	transactionHandler := handler.GetTransactionHandler()

	transactions := e.Group("/v1/transactions")
	transactions.Use(authMiddleware.Authenticate)
	transactions.GET("", transactionHandler.ListMine)
	transactions.POST("/:id/complete", transactionHandler.Complete)
	transactions.POST("/:id/cancel", transactionHandler.Cancel)
}

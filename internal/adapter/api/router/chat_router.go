package router

import (
	"github.com/labstack/echo/v4"

	"assetbazaar/internal/adapter/api/handler"
	"assetbazaar/internal/adapter/api/middleware"
)

// SetupChatRouter registers conversation routes. Opening a conversation
// lives under /v1/assets/:id.
func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	chatHandler := handler.GetChatHandler()

	chatGroup := e.Group("/v1/conversations")
	chatGroup.Use(authMiddleware.Authenticate)

	chatGroup.GET("", chatHandler.ListConversations)
	chatGroup.GET("/:id/messages", chatHandler.GetMessages)
	chatGroup.POST("/:id/messages", chatHandler.SendMessage)
	chatGroup.PUT("/:id/read", chatHandler.MarkRead)
}

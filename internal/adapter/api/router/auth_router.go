package router

import (
	"github.com/labstack/echo/v4"

	"assetbazaar/internal/adapter/api/handler"
	"assetbazaar/internal/adapter/api/middleware"
)

func SetupAuthRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	authHandler := handler.GetAuthHandler()

	me := e.Group("/v1/me")
	me.Use(authMiddleware.Authenticate)
	me.GET("", authHandler.Me)
	me.POST("/avatar", authHandler.UploadAvatar)

	e.POST("/v1/auth/signout", authHandler.SignOut, authMiddleware.Authenticate)
}

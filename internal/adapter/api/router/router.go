package router

import (
	"github.com/labstack/echo/v4"

	"assetbazaar/internal/adapter/api/middleware"
	"assetbazaar/internal/infrastructure/ratelimit"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware, limiter *ratelimit.RateLimiter) {
	SetupAssetRouter(e, authMiddleware, limiter)
	SetupAuthRouter(e, authMiddleware)
	SetupChatRouter(e, authMiddleware)
	SetupDueDiligenceRouter(e, authMiddleware)
	SetupTransactionRouter(e, authMiddleware)
	SetupAdminRouter(e, authMiddleware, adminMiddleware)
	SetupHealthRouter(e)
}

package router

import (
	"github.com/labstack/echo/v4"

	"assetbazaar/internal/adapter/api/handler"
)

// SetupDevRouter is a no-op outside development or without a JWT issuer.
func SetupDevRouter(e *echo.Echo, environment string) {
	devTokenHandler := handler.GetDevTokenHandler()
	if environment != "development" || devTokenHandler == nil {
		return
	}
	e.POST("/_dev/token", devTokenHandler.IssueToken)
}

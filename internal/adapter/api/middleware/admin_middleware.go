package middleware

import (
	"github.com/labstack/echo/v4"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/usecase"
	"assetbazaar/pkg/errors"
	"assetbazaar/pkg/response"
)

type AdminMiddleware struct {
	authUseCase *usecase.AuthUseCase
}

func NewAdminMiddleware(authUseCase *usecase.AuthUseCase) *AdminMiddleware {
	return &AdminMiddleware{
		authUseCase: authUseCase,
	}
}

// AdminOnly must run after AuthMiddleware.Authenticate.
func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, ok := c.Get("uid").(string)
		if !ok || uid == "" {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}

		isAdmin, err := m.authUseCase.IsAdmin(c.Request().Context(), &entity.Identity{UserID: uid})
		if err != nil {
			return response.Error(c, errors.Internal("Failed to verify admin privileges", err))
		}
		if !isAdmin {
			return response.Error(c, errors.Forbidden("Admin privileges required", nil))
		}

		return next(c)
	}
}

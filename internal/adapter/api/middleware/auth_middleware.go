package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"assetbazaar/internal/usecase"
	"assetbazaar/pkg/errors"
	"assetbazaar/pkg/response"
)

type AuthMiddleware struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthMiddleware(authUseCase *usecase.AuthUseCase) *AuthMiddleware {
	return &AuthMiddleware{
		authUseCase: authUseCase,
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", nil
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.Unauthorized("Invalid authorization format", nil)
	}
	return parts[1], nil
}

// Authenticate rejects requests without a valid bearer token and sets "uid".
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c)
		if err != nil {
			return response.Error(c, err)
		}
		if token == "" {
			return response.Error(c, errors.Unauthorized("Authorization header is required", nil))
		}

		identity, err := m.authUseCase.Authenticate(c.Request().Context(), token)
		if err != nil {
			return response.Error(c, err)
		}

		c.Set("uid", identity.UserID)
		return next(c)
	}
}

// Optional sets "uid" when a valid token is present and otherwise lets the
// request through signed out.
func (m *AuthMiddleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c)
		if err != nil || token == "" {
			return next(c)
		}
		if identity, err := m.authUseCase.Authenticate(c.Request().Context(), token); err == nil {
			c.Set("uid", identity.UserID)
		}
		return next(c)
	}
}

package handler

import (
	"github.com/labstack/echo/v4"

	"assetbazaar/internal/usecase"
	"assetbazaar/pkg/errors"
	"assetbazaar/pkg/response"
)

const maxAvatarSize = 5 << 20

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.authUseCase.CurrentUser(c.Request().Context(), identity(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *AuthHandler) SignOut(c echo.Context) error {
	if err := h.authUseCase.SignOut(c.Request().Context(), identity(c)); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Signed out"})
}

// UploadAvatar expects a multipart form with an "avatar" image file.
func (h *AuthHandler) UploadAvatar(c echo.Context) error {
	header, err := c.FormFile("avatar")
	if err != nil {
		return response.Error(c, errors.BadRequest("avatar file is required", err))
	}
	if header.Size > maxAvatarSize {
		return response.Error(c, errors.BadRequest("Avatar must be 5MB or smaller", nil))
	}

	file, err := header.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read avatar", err))
	}
	defer file.Close()

	user, err := h.authUseCase.UpdateAvatar(
		c.Request().Context(),
		identity(c),
		file,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

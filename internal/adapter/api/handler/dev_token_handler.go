package handler

import (
	"github.com/labstack/echo/v4"

	"assetbazaar/internal/domain/service"
	"assetbazaar/internal/infrastructure/jwtauth"
	"assetbazaar/internal/usecase"
	"assetbazaar/pkg/response"
)

// DevTokenHandler mints JWTs for local development when the jwt provider
// is active.
type DevTokenHandler struct {
	jwtManager  *jwtauth.Manager
	authUseCase *usecase.AuthUseCase
}

var devTokenHandler *DevTokenHandler

func NewDevTokenHandler(jwtManager *jwtauth.Manager, authUseCase *usecase.AuthUseCase) *DevTokenHandler {
	return &DevTokenHandler{
		jwtManager:  jwtManager,
		authUseCase: authUseCase,
	}
}

func SetupDevTokenHandler(jwtManager *jwtauth.Manager, authUseCase *usecase.AuthUseCase) {
	devTokenHandler = NewDevTokenHandler(jwtManager, authUseCase)
}

func GetDevTokenHandler() *DevTokenHandler {
	return devTokenHandler
}

type devTokenRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Name   string `json:"name"`
	Email  string `json:"email" validate:"omitempty,email"`
}

func (h *DevTokenHandler) IssueToken(c echo.Context) error {
	var req devTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	token, err := h.jwtManager.Issue(req.UserID, req.Name, req.Email)
	if err != nil {
		return response.Error(c, err)
	}
	user, err := h.authUseCase.RegisterProfile(c.Request().Context(), &service.Claims{
		UserID: req.UserID,
		Name:   req.Name,
		Email:  req.Email,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"assetbazaar/internal/domain/entity"
	ws "assetbazaar/internal/infrastructure/websocket"
	"assetbazaar/internal/usecase"
	"assetbazaar/pkg/logger"
	"assetbazaar/pkg/response"
)

type WebSocketHandler struct {
	wsManager   *ws.Manager
	authUseCase *usecase.AuthUseCase
	upgrader    gorillaws.Upgrader
}

func NewWebSocketHandler(wsManager *ws.Manager, authUseCase *usecase.AuthUseCase, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:   wsManager,
		authUseCase: authUseCase,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker accepts any origin when the list is empty or holds "*".
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// HandleWebSocket upgrades GET /ws. Browsers cannot set headers on a socket,
// so the token comes from the query string. A missing token opens a
// signed-out socket; an invalid one is rejected before upgrading.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	var id *entity.Identity
	if token := c.QueryParam("token"); token != "" {
		authed, err := h.authUseCase.Authenticate(c.Request().Context(), token)
		if err != nil {
			return response.Error(c, err)
		}
		id = authed
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the error response.
		logger.Warn("WebSocket: upgrade failed: %v", err)
		return nil
	}

	h.wsManager.Serve(c.Request().Context(), conn, id)
	return nil
}

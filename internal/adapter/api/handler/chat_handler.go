package handler

import (
	"github.com/labstack/echo/v4"

	"assetbazaar/internal/usecase"
	"assetbazaar/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// OpenConversation is POST /v1/assets/:id/conversations. Repeating it
// returns the existing conversation.
func (h *ChatHandler) OpenConversation(c echo.Context) error {
	conv, err := h.chatUseCase.OpenConversation(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, conv)
}

func (h *ChatHandler) ListConversations(c echo.Context) error {
	convs, err := h.chatUseCase.ListConversations(c.Request().Context(), identity(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, convs)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	msgs, err := h.chatUseCase.LoadMessages(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, msgs)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	msg, err := h.chatUseCase.SendMessage(c.Request().Context(), identity(c), c.Param("id"), req.Content)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, msg)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	n, err := h.chatUseCase.MarkRead(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int{"updated": n})
}

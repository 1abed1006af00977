package handler

import (
	"github.com/labstack/echo/v4"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/usecase"
	"assetbazaar/pkg/response"
)

type TransactionHandler struct {
	transactionUseCase *usecase.TransactionUseCase
}

func NewTransactionHandler(transactionUseCase *usecase.TransactionUseCase) *TransactionHandler {
	return &TransactionHandler{
		transactionUseCase: transactionUseCase,
	}
}

type purchaseRequest struct {
	AgreedToTerms bool `json:"agreed_to_terms"`
}

// Purchase leaves the terms check to the usecase so the user sees its message.
func (h *TransactionHandler) Purchase(c echo.Context) error {
	var req purchaseRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	tx, err := h.transactionUseCase.Purchase(c.Request().Context(), identity(c), c.Param("id"), req.AgreedToTerms)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, tx)
}

func (h *TransactionHandler) ListMine(c echo.Context) error {
	txs, err := h.transactionUseCase.ListMine(
		c.Request().Context(),
		identity(c),
		entity.TransactionStatus(c.QueryParam("status")),
	)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, txs)
}

func (h *TransactionHandler) Complete(c echo.Context) error {
	tx, err := h.transactionUseCase.Complete(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tx)
}

func (h *TransactionHandler) Cancel(c echo.Context) error {
	tx, err := h.transactionUseCase.Cancel(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tx)
}

package handler

import (
	"github.com/labstack/echo/v4"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/usecase"
)

var (
	assetHandler        *AssetHandler
	authHandler         *AuthHandler
	chatHandler         *ChatHandler
	dueDiligenceHandler *DueDiligenceHandler
	transactionHandler  *TransactionHandler
	adminHandler        *AdminHandler
)

func Setup(
	assetUseCase *usecase.AssetUseCase,
	authUseCase *usecase.AuthUseCase,
	chatUseCase *usecase.ChatUseCase,
	dueDiligenceUseCase *usecase.DueDiligenceUseCase,
	transactionUseCase *usecase.TransactionUseCase,
) {
	assetHandler = NewAssetHandler(assetUseCase)
	authHandler = NewAuthHandler(authUseCase)
	chatHandler = NewChatHandler(chatUseCase)
	dueDiligenceHandler = NewDueDiligenceHandler(dueDiligenceUseCase)
	transactionHandler = NewTransactionHandler(transactionUseCase)
	adminHandler = NewAdminHandler(assetUseCase)
}

func GetAssetHandler() *AssetHandler {
	return assetHandler
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetDueDiligenceHandler() *DueDiligenceHandler {
	return dueDiligenceHandler
}

func GetTransactionHandler() *TransactionHandler {
	return transactionHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}

// identity is the caller set by the auth middleware, nil when signed out.
func identity(c echo.Context) *entity.Identity {
	uid, ok := c.Get("uid").(string)
	if !ok || uid == "" {
		return nil
	}
	return &entity.Identity{UserID: uid}
}

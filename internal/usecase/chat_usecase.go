package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/repository"
	"assetbazaar/internal/domain/service"
	"assetbazaar/internal/infrastructure/ratelimit"
	"assetbazaar/pkg/errors"
	"assetbazaar/pkg/logger"
)

const maxMessageLength = 4000

type ChatUseCase struct {
	convRepo    repository.ConversationRepository
	msgRepo     repository.MessageRepository
	assetRepo   repository.AssetRepository
	rateLimiter *ratelimit.RateLimiter
}

func NewChatUseCase(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	assetRepo repository.AssetRepository,
	rateLimiter *ratelimit.RateLimiter,
) *ChatUseCase {
	return &ChatUseCase{
		convRepo:    convRepo,
		msgRepo:     msgRepo,
		assetRepo:   assetRepo,
		rateLimiter: rateLimiter,
	}
}

// OpenConversation returns the buyer's conversation with the seller about an
// asset, creating it on first contact.
func (uc *ChatUseCase) OpenConversation(ctx context.Context, identity *entity.Identity, assetID string) (*entity.Conversation, error) {
	asset, err := uc.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if err := service.CheckInteraction(identity, asset, service.ActionMessage); err != nil {
		return nil, err
	}

	key := entity.ConversationKey{AssetID: asset.ID, BuyerID: identity.UserID, SellerID: asset.Seller.ID}
	find := func(ctx context.Context) (*entity.Conversation, error) {
		return uc.convRepo.FindByKey(ctx, key)
	}
	create := func(ctx context.Context) (*entity.Conversation, error) {
		if err := allow(uc.rateLimiter, identity.UserID, ratelimit.ActionOpenConversation, "Too many new conversations. Please wait before starting another one"); err != nil {
			return nil, err
		}
		conv := &entity.Conversation{AssetID: key.AssetID, BuyerID: key.BuyerID, SellerID: key.SellerID}
		if err := uc.convRepo.Create(ctx, conv); err != nil {
			return nil, err
		}
		return conv, nil
	}

	conv, err := lookupOrCreate(ctx, find, create)
	if err != nil {
		logger.Error("OpenConversation Error: %v", err)
		return nil, err
	}
	return conv, nil
}

func (uc *ChatUseCase) ListConversations(ctx context.Context, identity *entity.Identity) ([]*entity.Conversation, error) {
	if err := requireIdentity(identity, "Please sign in to see your conversations"); err != nil {
		return nil, err
	}
	return uc.convRepo.ListByParticipant(ctx, identity.UserID)
}

// participantConversation loads a conversation the caller takes part in.
func (uc *ChatUseCase) participantConversation(ctx context.Context, identity *entity.Identity, conversationID string) (*entity.Conversation, error) {
	if err := requireIdentity(identity, "Please sign in to message sellers"); err != nil {
		return nil, err
	}
	conv, err := uc.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(identity.UserID) {
		return nil, errors.Forbidden("You are not part of this conversation", nil)
	}
	return conv, nil
}

// LoadMessages returns the conversation history, oldest first.
func (uc *ChatUseCase) LoadMessages(ctx context.Context, identity *entity.Identity, conversationID string) ([]*entity.Message, error) {
	if _, err := uc.participantConversation(ctx, identity, conversationID); err != nil {
		return nil, err
	}
	return uc.msgRepo.ListByConversation(ctx, conversationID)
}

func (uc *ChatUseCase) SendMessage(ctx context.Context, identity *entity.Identity, conversationID, content string) (*entity.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.Validation("Message cannot be empty")
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, errors.Validation("Message is too long")
	}

	if _, err := uc.participantConversation(ctx, identity, conversationID); err != nil {
		return nil, err
	}
	if err := allow(uc.rateLimiter, identity.UserID, ratelimit.ActionSendMessage, "Rate limit exceeded. Please wait before sending another message"); err != nil {
		return nil, err
	}

	msg := &entity.Message{
		ConversationID: conversationID,
		SenderID:       identity.UserID,
		Content:        content,
	}
	if err := uc.msgRepo.Create(ctx, msg); err != nil {
		logger.Error("SendMessage Error: %v", err)
		return nil, err
	}
	return msg, nil
}

// MarkRead flags the other participant's messages as read.
func (uc *ChatUseCase) MarkRead(ctx context.Context, identity *entity.Identity, conversationID string) (int, error) {
	if _, err := uc.participantConversation(ctx, identity, conversationID); err != nil {
		return 0, err
	}
	return uc.msgRepo.MarkRead(ctx, conversationID, identity.UserID)
}

// Subscribe streams messages created in the conversation from now on.
func (uc *ChatUseCase) Subscribe(ctx context.Context, identity *entity.Identity, conversationID string) (repository.MessageStream, error) {
	if _, err := uc.participantConversation(ctx, identity, conversationID); err != nil {
		return nil, err
	}
	return uc.msgRepo.Subscribe(ctx, conversationID)
}

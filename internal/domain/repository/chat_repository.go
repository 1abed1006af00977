package repository

import (
	"context"

	"assetbazaar/internal/domain/entity"
)

type ConversationRepository interface {
	// FindByKey returns nil without error when no conversation has the key.
	FindByKey(ctx context.Context, key entity.ConversationKey) (*entity.Conversation, error)
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	// Create returns ErrDuplicate when the key is taken.
	Create(ctx context.Context, conv *entity.Conversation) error
	ListByParticipant(ctx context.Context, userID string) ([]*entity.Conversation, error)
}

type MessageRepository interface {
	// ListByConversation returns messages oldest first.
	ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error)
	Create(ctx context.Context, msg *entity.Message) error
	// MarkRead flags every unread message not sent by readerID.
	MarkRead(ctx context.Context, conversationID, readerID string) (int, error)
	Subscribe(ctx context.Context, conversationID string) (MessageStream, error)
}

// MessageStream delivers messages inserted after it was opened. Errors
// arrive on their own channel and do not end the stream.
type MessageStream interface {
	Messages() <-chan *entity.Message
	Errors() <-chan error
	Close()
}

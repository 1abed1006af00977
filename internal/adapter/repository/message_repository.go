package repository

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/query"
	"assetbazaar/internal/domain/repository"
	"assetbazaar/internal/infrastructure/datastore"
	"assetbazaar/pkg/errors"
)

type messageRepository struct {
	store datastore.Store
}

func NewMessageRepository(store datastore.Store) repository.MessageRepository {
	return &messageRepository{store: store}
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	q := query.From(query.Messages).
		Filter(query.Eq("conversation_id", conversationID)).
		Order(query.Order{Field: "created_at"}, query.Order{Field: "id"})

	recs, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, errors.Internal("Failed to load messages", err)
	}
	msgs := make([]*entity.Message, 0, len(recs))
	for _, rec := range recs {
		msgs = append(msgs, ToMessage(rec))
	}
	return msgs, nil
}

// Create assigns a ULID so messages created within the same instant still
// order by arrival.
func (r *messageRepository) Create(ctx context.Context, msg *entity.Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	rec := query.Record{
		"id":              msg.ID,
		"conversation_id": msg.ConversationID,
		"sender_id":       msg.SenderID,
		"content":         msg.Content,
		"read":            msg.Read,
		"created_at":      msg.CreatedAt,
	}
	if _, err := r.store.Insert(ctx, datastore.Insert{Collection: query.Messages, Record: rec}); err != nil {
		return errors.Internal("Failed to send message", err)
	}
	return nil
}

func (r *messageRepository) MarkRead(ctx context.Context, conversationID, readerID string) (int, error) {
	n, err := r.store.Update(ctx, query.Messages,
		query.Record{"read": true},
		[]query.Predicate{
			query.Eq("conversation_id", conversationID),
			query.Neq("sender_id", readerID),
			query.Eq("read", false),
		})
	if err != nil {
		return 0, errors.Internal("Failed to mark messages as read", err)
	}
	return n, nil
}

func (r *messageRepository) Subscribe(ctx context.Context, conversationID string) (repository.MessageStream, error) {
	sub, err := r.store.Subscribe(ctx, query.Messages, datastore.EventInsert, query.Eq("conversation_id", conversationID))
	if err != nil {
		return nil, errors.Internal("Failed to subscribe to messages", err)
	}
	return newMessageStream(sub), nil
}

// messageStream adapts a datastore subscription. The Messages channel is
// closed once the subscription ends; Errors is never closed.
type messageStream struct {
	sub  *datastore.Subscription
	msgs chan *entity.Message
	errs chan error
}

func newMessageStream(sub *datastore.Subscription) *messageStream {
	s := &messageStream{
		sub:  sub,
		msgs: make(chan *entity.Message, 16),
		errs: make(chan error, 4),
	}
	go s.run()
	return s
}

func (s *messageStream) run() {
	defer close(s.msgs)
	for {
		select {
		case ev := <-s.sub.Events():
			select {
			case s.msgs <- ToMessage(ev.Record):
			case <-s.sub.Done():
				return
			}
		case err := <-s.sub.Errors():
			s.forward(err)
		case <-s.sub.Done():
			select {
			case err := <-s.sub.Errors():
				s.forward(err)
			default:
			}
			return
		}
	}
}

// forward drops the error when the consumer is not keeping up; nobody may
// be reading once the subscription is done.
func (s *messageStream) forward(err error) bool {
	select {
	case s.errs <- err:
		return true
	default:
		return false
	}
}

func (s *messageStream) Messages() <-chan *entity.Message { return s.msgs }

func (s *messageStream) Errors() <-chan error { return s.errs }

func (s *messageStream) Close() { s.sub.Unsubscribe() }

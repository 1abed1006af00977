// Package realtime keeps a live, deduplicated view of one conversation.
package realtime

import (
	"context"
	stderrors "errors"
	"sync"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/repository"
	"assetbazaar/pkg/errors"
)

var ErrClosed = stderrors.New("realtime: feed closed")

type Subscriber interface {
	Subscribe(ctx context.Context, conversationID string) (repository.MessageStream, error)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, conversationID string) (repository.MessageStream, error)

func (f SubscriberFunc) Subscribe(ctx context.Context, conversationID string) (repository.MessageStream, error) {
	return f(ctx, conversationID)
}

type subscription struct {
	conversationID string
	stream         repository.MessageStream
	cancel         context.CancelFunc
	done           chan struct{}
}

// Feed holds at most one subscription at a time. Messages are folded in
// arrival order and each message id is kept once, whether it came from the
// initial history, a local send or the subscription.
type Feed struct {
	subscriber Subscriber
	reporter   errors.Reporter
	updates    chan *entity.Message

	opMu    sync.Mutex
	current *subscription
	closed  bool

	mu             sync.Mutex
	conversationID string
	seen           map[string]struct{}
	messages       []*entity.Message
}

func NewFeed(subscriber Subscriber, reporter errors.Reporter) *Feed {
	return &Feed{
		subscriber: subscriber,
		reporter:   reporter,
		updates:    make(chan *entity.Message, 64),
		seen:       make(map[string]struct{}),
	}
}

// Open switches the feed to conversationID, seeded with history. Opening the
// conversation that is already open does nothing. A failed subscription is
// reported and leaves the feed showing history only.
func (f *Feed) Open(ctx context.Context, conversationID string, history []*entity.Message) error {
	f.opMu.Lock()
	defer f.opMu.Unlock()

	if f.closed {
		return ErrClosed
	}
	if f.current != nil && f.current.conversationID == conversationID {
		return nil
	}
	f.release()

	f.mu.Lock()
	f.conversationID = conversationID
	f.seen = make(map[string]struct{}, len(history))
	f.messages = nil
	f.mu.Unlock()
	for _, m := range history {
		f.Fold(m)
	}

	subCtx, cancel := context.WithCancel(ctx)
	stream, err := f.subscriber.Subscribe(subCtx, conversationID)
	if err != nil {
		cancel()
		f.reporter.Report("realtime subscribe "+conversationID, err)
		return nil
	}

	sub := &subscription{
		conversationID: conversationID,
		stream:         stream,
		cancel:         cancel,
		done:           make(chan struct{}),
	}
	f.current = sub
	go f.drain(subCtx, sub)
	return nil
}

// Fold appends m unless it belongs to another conversation or was already
// seen. It reports whether m was added.
func (f *Feed) Fold(m *entity.Message) bool {
	if m == nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conversationID == "" || m.ConversationID != f.conversationID {
		return false
	}
	if _, dup := f.seen[m.ID]; dup {
		return false
	}
	f.seen[m.ID] = struct{}{}
	f.messages = append(f.messages, m)
	return true
}

func (f *Feed) drain(ctx context.Context, sub *subscription) {
	defer close(sub.done)
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-sub.stream.Messages():
			if !ok {
				return
			}
			if !f.Fold(m) {
				continue
			}
			select {
			case f.updates <- m:
			case <-ctx.Done():
				return
			}
		case err := <-sub.stream.Errors():
			f.reporter.Report("realtime "+sub.conversationID, err)
		}
	}
}

// release must be called with opMu held.
func (f *Feed) release() {
	if f.current == nil {
		return
	}
	f.current.cancel()
	f.current.stream.Close()
	<-f.current.done
	f.current = nil
}

// Updates yields messages that arrived through the subscription. It is
// closed by Close.
func (f *Feed) Updates() <-chan *entity.Message { return f.updates }

func (f *Feed) Messages() []*entity.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.Message, len(f.messages))
	copy(out, f.messages)
	return out
}

func (f *Feed) ConversationID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conversationID
}

// Leave releases the subscription and forgets the conversation but keeps the
// feed usable.
func (f *Feed) Leave() {
	f.opMu.Lock()
	defer f.opMu.Unlock()

	f.release()
	f.mu.Lock()
	f.conversationID = ""
	f.seen = make(map[string]struct{})
	f.messages = nil
	f.mu.Unlock()
}

func (f *Feed) Close() {
	f.opMu.Lock()
	defer f.opMu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	f.release()
	close(f.updates)
}

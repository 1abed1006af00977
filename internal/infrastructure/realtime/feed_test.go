package realtime

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/repository"
	"assetbazaar/pkg/errors"
)

type fakeStream struct {
	msgs   chan *entity.Message
	errs   chan error
	once   sync.Once
	closed chan struct{}
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		msgs:   make(chan *entity.Message, 8),
		errs:   make(chan error, 8),
		closed: make(chan struct{}),
	}
}

func (s *fakeStream) Messages() <-chan *entity.Message { return s.msgs }
func (s *fakeStream) Errors() <-chan error             { return s.errs }
func (s *fakeStream) Close()                           { s.once.Do(func() { close(s.closed) }) }

func (s *fakeStream) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

type fakeSubscriber struct {
	mu      sync.Mutex
	streams map[string][]*fakeStream
	err     error
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, conversationID string) (repository.MessageStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.streams == nil {
		f.streams = make(map[string][]*fakeStream)
	}
	s := newFakeStream()
	f.streams[conversationID] = append(f.streams[conversationID], s)
	return s, nil
}

func (f *fakeSubscriber) opened(conversationID string) []*fakeStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streams[conversationID]
}

func msg(id, conv, content string) *entity.Message {
	return &entity.Message{ID: id, ConversationID: conv, Content: content}
}

func nextUpdate(t *testing.T, f *Feed) *entity.Message {
	t.Helper()
	select {
	case m := <-f.Updates():
		return m
	case <-time.After(time.Second):
		t.Fatal("no update")
		return nil
	}
}

func TestFeed_AppendsInArrivalOrder(t *testing.T) {
	sub := &fakeSubscriber{}
	feed := NewFeed(sub, &errors.Recorder{})
	defer feed.Close()

	require.NoError(t, feed.Open(context.Background(), "c1", []*entity.Message{msg("m1", "c1", "hello")}))

	stream := sub.opened("c1")[0]
	stream.msgs <- msg("m3", "c1", "third")
	stream.msgs <- msg("m2", "c1", "second")

	assert.Equal(t, "m3", nextUpdate(t, feed).ID)
	assert.Equal(t, "m2", nextUpdate(t, feed).ID)

	got := feed.Messages()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"m1", "m3", "m2"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestFeed_DuplicateEventsFoldOnce(t *testing.T) {
	sub := &fakeSubscriber{}
	feed := NewFeed(sub, &errors.Recorder{})
	defer feed.Close()

	require.NoError(t, feed.Open(context.Background(), "c1", []*entity.Message{msg("m1", "c1", "hello")}))
	assert.True(t, feed.Fold(msg("m2", "c1", "sent locally")))

	stream := sub.opened("c1")[0]
	stream.msgs <- msg("m1", "c1", "hello")
	stream.msgs <- msg("m2", "c1", "sent locally")
	stream.msgs <- msg("m3", "c1", "new")

	assert.Equal(t, "m3", nextUpdate(t, feed).ID)
	assert.Len(t, feed.Messages(), 3)
}

func TestFeed_ReopenSameConversationIsNoop(t *testing.T) {
	sub := &fakeSubscriber{}
	feed := NewFeed(sub, &errors.Recorder{})
	defer feed.Close()

	ctx := context.Background()
	require.NoError(t, feed.Open(ctx, "c1", nil))
	require.NoError(t, feed.Open(ctx, "c1", nil))

	assert.Len(t, sub.opened("c1"), 1)
}

func TestFeed_SwitchingReleasesPrevious(t *testing.T) {
	sub := &fakeSubscriber{}
	feed := NewFeed(sub, &errors.Recorder{})
	defer feed.Close()

	ctx := context.Background()
	require.NoError(t, feed.Open(ctx, "c1", []*entity.Message{msg("m1", "c1", "old")}))
	require.NoError(t, feed.Open(ctx, "c2", nil))

	assert.True(t, sub.opened("c1")[0].isClosed())
	assert.False(t, sub.opened("c2")[0].isClosed())
	assert.Equal(t, "c2", feed.ConversationID())
	assert.Empty(t, feed.Messages())

	assert.False(t, feed.Fold(msg("m9", "c1", "stale")))
}

func TestFeed_ErrorsAreReportedNotReturned(t *testing.T) {
	sub := &fakeSubscriber{}
	rec := &errors.Recorder{}
	feed := NewFeed(sub, rec)
	defer feed.Close()

	require.NoError(t, feed.Open(context.Background(), "c1", nil))
	sub.opened("c1")[0].errs <- stderrors.New("channel error")

	assert.Eventually(t, func() bool { return len(rec.Reports()) == 1 }, time.Second, 10*time.Millisecond)
}

func TestFeed_SubscribeFailureIsReported(t *testing.T) {
	sub := &fakeSubscriber{err: stderrors.New("offline")}
	rec := &errors.Recorder{}
	feed := NewFeed(sub, rec)
	defer feed.Close()

	err := feed.Open(context.Background(), "c1", []*entity.Message{msg("m1", "c1", "hello")})

	require.NoError(t, err)
	assert.Len(t, rec.Reports(), 1)
	assert.Len(t, feed.Messages(), 1)
}

func TestFeed_CloseReleasesAndRejectsOpen(t *testing.T) {
	sub := &fakeSubscriber{}
	feed := NewFeed(sub, &errors.Recorder{})

	require.NoError(t, feed.Open(context.Background(), "c1", nil))
	feed.Close()
	feed.Close()

	assert.True(t, sub.opened("c1")[0].isClosed())
	_, ok := <-feed.Updates()
	assert.False(t, ok)
	assert.ErrorIs(t, feed.Open(context.Background(), "c2", nil), ErrClosed)
}

func TestFeed_LeaveKeepsFeedUsable(t *testing.T) {
	sub := &fakeSubscriber{}
	feed := NewFeed(sub, &errors.Recorder{})
	defer feed.Close()

	ctx := context.Background()
	require.NoError(t, feed.Open(ctx, "c1", nil))
	feed.Leave()

	assert.True(t, sub.opened("c1")[0].isClosed())
	assert.Equal(t, "", feed.ConversationID())

	require.NoError(t, feed.Open(ctx, "c1", nil))
	assert.Len(t, sub.opened("c1"), 2)
}

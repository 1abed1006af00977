package datastore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetbazaar/internal/domain/query"
)

func TestMemoryStore_InsertAssignsIDAndCreatedAt(t *testing.T) {
	s := NewMemoryStore()

	recs, err := s.Insert(context.Background(), Insert{Collection: query.Assets, Record: query.Record{"title": "Blog"}})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.NotEmpty(t, recs[0]["id"])
	assert.IsType(t, time.Time{}, recs[0]["created_at"])
}

func TestMemoryStore_SelectReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Insert(ctx, Insert{Collection: query.Assets, Record: query.Record{"id": "a1", "status": "active"}})
	require.NoError(t, err)

	got, err := s.Select(ctx, query.From(query.Assets))
	require.NoError(t, err)
	got[0]["status"] = "sold"

	again, err := s.Select(ctx, query.From(query.Assets).Filter(query.Eq("status", "active")))
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestMemoryStore_UniqueKeyConflict(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	conv := query.Record{"asset_id": "a1", "buyer_id": "b1", "seller_id": "s1"}

	_, err := s.Insert(ctx, Insert{Collection: query.Conversations, Record: conv})
	require.NoError(t, err)

	_, err = s.Insert(ctx, Insert{Collection: query.Conversations, Record: conv})
	assert.ErrorIs(t, err, ErrConflict)

	other := query.Record{"asset_id": "a1", "buyer_id": "b2", "seller_id": "s1"}
	_, err = s.Insert(ctx, Insert{Collection: query.Conversations, Record: other})
	assert.NoError(t, err)
}

func TestMemoryStore_InsertIsAtomic(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	dup := query.Record{"asset_id": "a1", "buyer_id": "b1"}
	_, err := s.Insert(ctx, Insert{Collection: query.DueDiligenceRequests, Record: dup})
	require.NoError(t, err)

	_, err = s.Insert(ctx,
		Insert{Collection: query.VerificationItems, Record: query.Record{"type": "legal"}},
		Insert{Collection: query.DueDiligenceRequests, Record: dup},
	)
	require.ErrorIs(t, err, ErrConflict)

	items, err := s.Select(ctx, query.From(query.VerificationItems))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMemoryStore_ConditionalUpdate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Insert(ctx, Insert{Collection: query.Assets, Record: query.Record{"id": "a1", "status": "active"}})
	require.NoError(t, err)

	match := []query.Predicate{query.Eq("id", "a1"), query.Eq("status", "active")}

	n, err := s.Update(ctx, query.Assets, query.Record{"status": "pending"}, match)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Update(ctx, query.Assets, query.Record{"status": "pending"}, match)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMemoryStore_SubscribeFiltersInserts(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := s.Subscribe(ctx, query.Messages, EventInsert, query.Eq("conversation_id", "c1"))
	require.NoError(t, err)
	defer sub.Unsubscribe()

	_, err = s.Insert(ctx,
		Insert{Collection: query.Messages, Record: query.Record{"conversation_id": "c2", "content": "elsewhere"}},
		Insert{Collection: query.Messages, Record: query.Record{"conversation_id": "c1", "content": "hello"}},
	)
	require.NoError(t, err)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, EventInsert, ev.Type)
		assert.Equal(t, "hello", ev.Record["content"])
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event %v", ev)
	default:
	}
}

func TestMemoryStore_UnsubscribeOnContextCancel(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := s.Subscribe(ctx, query.Messages, EventInsert, query.Eq("conversation_id", "c1"))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Subscribers())

	cancel()

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription not released")
	}
	assert.Eventually(t, func() bool { return s.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestMemoryStore_ConcurrentKeyedInsertsConverge(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	conv := query.Record{"asset_id": "a1", "buyer_id": "b1", "seller_id": "s1"}

	var wg sync.WaitGroup
	var mu sync.Mutex
	conflicts := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Insert(ctx, Insert{Collection: query.Conversations, Record: conv}); err != nil {
				mu.Lock()
				conflicts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 9, conflicts)
}

func TestInstrumentedStore_CountsCalls(t *testing.T) {
	s := Instrument(NewMemoryStore())
	ctx := context.Background()

	_, _ = s.Select(ctx, query.From(query.Assets))
	_, _ = s.Insert(ctx, Insert{Collection: query.Assets, Record: query.Record{}})
	_, _ = s.Update(ctx, query.Assets, query.Record{"status": "sold"}, nil)

	stats := s.Stats()
	assert.Equal(t, int64(1), stats.Selects)
	assert.Equal(t, int64(1), stats.Inserts)
	assert.Equal(t, int64(1), stats.Updates)
	assert.Equal(t, int64(3), stats.Total())
}

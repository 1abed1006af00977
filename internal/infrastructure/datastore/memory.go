package datastore

import (
	"context"
	"sync"

	"assetbazaar/internal/domain/query"
)

// MemoryStore keeps every collection in process. It honours the same unique
// keys and change events as the hosted backends.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]query.Record
	subs map[*memorySubscriber]struct{}
}

type memorySubscriber struct {
	collection string
	event      EventType
	filter     query.Predicate
	sub        *Subscription
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]query.Record),
		subs: make(map[*memorySubscriber]struct{}),
	}
}

func (s *MemoryStore) Select(ctx context.Context, q query.Query) ([]query.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := query.Apply(q, s.data[q.Collection])
	out := make([]query.Record, len(matched))
	for i, r := range matched {
		out[i] = clone(r)
	}
	return out, nil
}

func (s *MemoryStore) Insert(ctx context.Context, inserts ...Insert) ([]query.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	seen := make(map[string]struct{})
	prepared := make([]query.Record, len(inserts))
	for i, in := range inserts {
		rec := prepare(in.Record)
		pk := in.Collection + "#" + rec["id"].(string)
		if _, dup := seen[pk]; dup || s.hasIDLocked(in.Collection, rec["id"]) {
			s.mu.Unlock()
			return nil, ErrConflict
		}
		seen[pk] = struct{}{}
		if key := naturalKey(in.Collection, rec); key != "" {
			scoped := in.Collection + "/" + key
			if _, dup := seen[scoped]; dup || s.hasKeyLocked(in.Collection, key) {
				s.mu.Unlock()
				return nil, ErrConflict
			}
			seen[scoped] = struct{}{}
		}
		prepared[i] = rec
	}

	events := make([]Event, len(inserts))
	for i, in := range inserts {
		s.data[in.Collection] = append(s.data[in.Collection], prepared[i])
		events[i] = Event{Type: EventInsert, Collection: in.Collection, Record: clone(prepared[i])}
	}
	s.mu.Unlock()

	s.publish(ctx, events)

	out := make([]query.Record, len(prepared))
	for i, r := range prepared {
		out[i] = clone(r)
	}
	return out, nil
}

func (s *MemoryStore) hasIDLocked(collection string, id any) bool {
	for _, r := range s.data[collection] {
		if r["id"] == id {
			return true
		}
	}
	return false
}

func (s *MemoryStore) hasKeyLocked(collection, key string) bool {
	for _, r := range s.data[collection] {
		if naturalKey(collection, r) == key {
			return true
		}
	}
	return false
}

func (s *MemoryStore) Update(ctx context.Context, collection string, patch query.Record, match []query.Predicate) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	q := query.Query{Collection: collection, Where: match}

	s.mu.Lock()
	var events []Event
	rows := s.data[collection]
	for i, r := range rows {
		if !query.Matches(q, r) {
			continue
		}
		updated := clone(r)
		for k, v := range patch {
			updated[k] = v
		}
		rows[i] = updated
		events = append(events, Event{Type: EventUpdate, Collection: collection, Record: clone(updated)})
	}
	s.mu.Unlock()

	s.publish(ctx, events)
	return len(events), nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, collection string, event EventType, filter query.Predicate) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ms := &memorySubscriber{collection: collection, event: event, filter: filter}
	ms.sub = newSubscription(func() {
		s.mu.Lock()
		delete(s.subs, ms)
		s.mu.Unlock()
	})

	s.mu.Lock()
	s.subs[ms] = struct{}{}
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			ms.sub.Unsubscribe()
		case <-ms.sub.Done():
		}
	}()

	return ms.sub, nil
}

// Subscribers reports the number of live subscriptions.
func (s *MemoryStore) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

func (s *MemoryStore) publish(ctx context.Context, events []Event) {
	if len(events) == 0 {
		return
	}

	s.mu.RLock()
	targets := make([]*memorySubscriber, 0, len(s.subs))
	for ms := range s.subs {
		targets = append(targets, ms)
	}
	s.mu.RUnlock()

	for _, ev := range events {
		for _, ms := range targets {
			if ms.collection != ev.Collection || ms.event != ev.Type {
				continue
			}
			if ms.filter.Field != "" && !query.MatchPredicate(ms.filter, ev.Record) {
				continue
			}
			select {
			case ms.sub.events <- Event{Type: ev.Type, Collection: ev.Collection, Record: clone(ev.Record)}:
			case <-ms.sub.done:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	targets := make([]*memorySubscriber, 0, len(s.subs))
	for ms := range s.subs {
		targets = append(targets, ms)
	}
	s.mu.Unlock()

	for _, ms := range targets {
		ms.sub.Unsubscribe()
	}
	return nil
}

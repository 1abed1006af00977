package datastore

import (
	"context"
	"sync/atomic"
	"time"

	"assetbazaar/internal/domain/query"
	"assetbazaar/pkg/logger"
)

type Stats struct {
	Selects    int64 `json:"selects"`
	Inserts    int64 `json:"inserts"`
	Updates    int64 `json:"updates"`
	Subscribes int64 `json:"subscribes"`
}

func (s Stats) Total() int64 {
	return s.Selects + s.Inserts + s.Updates + s.Subscribes
}

// InstrumentedStore counts and debug-logs every backend round-trip.
type InstrumentedStore struct {
	next       Store
	selects    atomic.Int64
	inserts    atomic.Int64
	updates    atomic.Int64
	subscribes atomic.Int64
}

func Instrument(next Store) *InstrumentedStore {
	return &InstrumentedStore{next: next}
}

func (s *InstrumentedStore) Stats() Stats {
	return Stats{
		Selects:    s.selects.Load(),
		Inserts:    s.inserts.Load(),
		Updates:    s.updates.Load(),
		Subscribes: s.subscribes.Load(),
	}
}

func (s *InstrumentedStore) Select(ctx context.Context, q query.Query) ([]query.Record, error) {
	s.selects.Add(1)
	start := time.Now()
	recs, err := s.next.Select(ctx, q)
	logger.Debug("datastore select %s: %d rows in %s (err=%v)", q.Collection, len(recs), time.Since(start), err)
	return recs, err
}

func (s *InstrumentedStore) Insert(ctx context.Context, inserts ...Insert) ([]query.Record, error) {
	s.inserts.Add(1)
	start := time.Now()
	recs, err := s.next.Insert(ctx, inserts...)
	logger.Debug("datastore insert: %d records in %s (err=%v)", len(inserts), time.Since(start), err)
	return recs, err
}

func (s *InstrumentedStore) Update(ctx context.Context, collection string, patch query.Record, match []query.Predicate) (int, error) {
	s.updates.Add(1)
	start := time.Now()
	n, err := s.next.Update(ctx, collection, patch, match)
	logger.Debug("datastore update %s: %d rows in %s (err=%v)", collection, n, time.Since(start), err)
	return n, err
}

func (s *InstrumentedStore) Subscribe(ctx context.Context, collection string, event EventType, filter query.Predicate) (*Subscription, error) {
	s.subscribes.Add(1)
	logger.Debug("datastore subscribe %s %s where %s %s %v", collection, event, filter.Field, filter.Op, filter.Value)
	return s.next.Subscribe(ctx, collection, event, filter)
}

func (s *InstrumentedStore) Close() error {
	return s.next.Close()
}

// Package datastore is the boundary to the hosted backend. Everything the
// service persists goes through the four primitives of Store; the concrete
// backends are Firestore, Postgres and an in-process memory store.
package datastore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"assetbazaar/internal/domain/query"
)

// ErrConflict is returned when an insert collides with an existing natural key.
var ErrConflict = errors.New("datastore: unique key conflict")

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
)

type Insert struct {
	Collection string
	Record     query.Record
}

type Event struct {
	Type       EventType
	Collection string
	Record     query.Record
}

type Store interface {
	Select(ctx context.Context, q query.Query) ([]query.Record, error)
	// Insert writes all records atomically and returns them as stored.
	Insert(ctx context.Context, inserts ...Insert) ([]query.Record, error)
	// Update applies patch to every record matching all predicates and returns how many matched.
	Update(ctx context.Context, collection string, patch query.Record, match []query.Predicate) (int, error)
	Subscribe(ctx context.Context, collection string, event EventType, filter query.Predicate) (*Subscription, error)
	Close() error
}

// UniqueKeys lists the natural keys each backend must enforce.
var UniqueKeys = map[string][]string{
	query.Conversations:        {"asset_id", "buyer_id", "seller_id"},
	query.DueDiligenceRequests: {"asset_id", "buyer_id"},
}

// Subscription delivers change events until Unsubscribe is called or the
// subscribing context ends. Errors are delivered separately and never close
// the event stream on their own.
type Subscription struct {
	events chan Event
	errs   chan error
	done   chan struct{}
	once   sync.Once
	stop   func()
}

func newSubscription(stop func()) *Subscription {
	return &Subscription{
		events: make(chan Event, 64),
		errs:   make(chan error, 8),
		done:   make(chan struct{}),
		stop:   stop,
	}
}

func (s *Subscription) Events() <-chan Event { return s.events }

func (s *Subscription) Errors() <-chan error { return s.errs }

// Done is closed once the subscription has been released.
func (s *Subscription) Done() <-chan struct{} { return s.done }

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		if s.stop != nil {
			s.stop()
		}
	})
}

func (s *Subscription) deliver(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

func (s *Subscription) fail(err error) {
	select {
	case s.errs <- err:
	default:
	}
}

// prepare fills in the id and creation time the backend would assign.
func prepare(rec query.Record) query.Record {
	out := clone(rec)
	if id, _ := out["id"].(string); id == "" {
		out["id"] = uuid.New().String()
	}
	if out["created_at"] == nil {
		out["created_at"] = time.Now().UTC()
	}
	return out
}

func clone(rec query.Record) query.Record {
	out := make(query.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// naturalKey returns the unique key value of rec, or "" when the collection has none.
func naturalKey(collection string, rec query.Record) string {
	fields, ok := UniqueKeys[collection]
	if !ok {
		return ""
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		s, _ := rec[f].(string)
		parts[i] = s
	}
	return strings.Join(parts, "|")
}

// keyedID derives a stable document id from a natural key.
func keyedID(collection, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(collection+"/"+key)).String()
}

package datastore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"assetbazaar/internal/domain/query"
)

// Firestore rejects "in" filters with more values than this.
const firestoreInLimit = 30

// FirestoreStore maps collections onto Firestore collections of the same
// name. Equality filters are pushed to Firestore; ranges, text search and
// ordering are evaluated here since Firestore needs a composite index for
// every combination of them.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) pushdown(q query.Query) (firestore.Query, bool) {
	fq := s.client.Collection(q.Collection).Query
	exact := q.Text == nil && len(q.OrderBy) == 0

	for _, p := range q.Where {
		switch {
		case p.Op == query.OpEq && p.Value != nil:
			fq = fq.Where(p.Field, "==", p.Value)
		case p.Op == query.OpIn:
			values, _ := p.Value.([]string)
			if len(values) == 0 || len(values) > firestoreInLimit {
				exact = false
				continue
			}
			fq = fq.Where(p.Field, "in", values)
		default:
			exact = false
		}
	}
	return fq, exact
}

func (s *FirestoreStore) Select(ctx context.Context, q query.Query) ([]query.Record, error) {
	if p, ok := q.Predicate("id"); ok && p.Op == query.OpIn {
		if values, _ := p.Value.([]string); len(values) == 0 {
			return []query.Record{}, nil
		}
	}

	fq, exact := s.pushdown(q)
	if exact {
		if q.Offset > 0 {
			fq = fq.Offset(q.Offset)
		}
		if q.Limit > 0 {
			fq = fq.Limit(q.Limit)
		}
	}

	iter := fq.Documents(ctx)
	defer iter.Stop()

	recs := []query.Record{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore select %s: %w", q.Collection, err)
		}
		recs = append(recs, docRecord(doc))
	}
	if exact {
		return recs, nil
	}
	return query.Apply(q, recs), nil
}

func docRecord(doc *firestore.DocumentSnapshot) query.Record {
	rec := doc.Data()
	if rec == nil {
		rec = query.Record{}
	}
	if _, ok := rec["id"]; !ok {
		rec["id"] = doc.Ref.ID
	}
	return rec
}

// Insert writes every record in one transaction. Records with a natural key
// are stored under a document name derived from it, so a second writer fails
// with AlreadyExists instead of creating a duplicate. The id field is kept.
func (s *FirestoreStore) Insert(ctx context.Context, inserts ...Insert) ([]query.Record, error) {
	prepared := make([]query.Record, len(inserts))
	refs := make([]*firestore.DocumentRef, len(inserts))
	for i, in := range inserts {
		rec := prepare(in.Record)
		docID := rec["id"].(string)
		if key := naturalKey(in.Collection, rec); key != "" {
			docID = keyedID(in.Collection, key)
		}
		prepared[i] = rec
		refs[i] = s.client.Collection(in.Collection).Doc(docID)
	}

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for i := range refs {
			if err := tx.Create(refs[i], prepared[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("firestore insert: %w", err)
	}
	return prepared, nil
}

// Update reads and writes inside one transaction so the match predicates
// double as a precondition.
func (s *FirestoreStore) Update(ctx context.Context, collection string, patch query.Record, match []query.Predicate) (int, error) {
	q := query.Query{Collection: collection, Where: match}
	fq, _ := s.pushdown(q)

	var updated int
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		updated = 0
		docs, err := tx.Documents(fq).GetAll()
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if !query.Matches(q, docRecord(doc)) {
				continue
			}
			if err := tx.Set(doc.Ref, patch, firestore.MergeAll); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("firestore update %s: %w", collection, err)
	}
	return updated, nil
}

// Subscribe listens to query snapshots. The first snapshot only reflects
// existing documents and is skipped.
func (s *FirestoreStore) Subscribe(ctx context.Context, collection string, event EventType, filter query.Predicate) (*Subscription, error) {
	fq := s.client.Collection(collection).Query
	if filter.Field != "" && filter.Op == query.OpEq {
		fq = fq.Where(filter.Field, "==", filter.Value)
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := newSubscription(cancel)
	it := fq.Snapshots(ctx)

	want := firestore.DocumentAdded
	if event == EventUpdate {
		want = firestore.DocumentModified
	}

	go func() {
		defer it.Stop()
		defer sub.Unsubscribe()

		first := true
		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() == nil && status.Code(err) != codes.Canceled && !errors.Is(err, context.Canceled) {
					sub.fail(fmt.Errorf("firestore listen %s: %w", collection, err))
				}
				return
			}
			if first {
				first = false
				continue
			}
			for _, change := range snap.Changes {
				if change.Kind != want {
					continue
				}
				rec := docRecord(change.Doc)
				if filter.Field != "" && !query.MatchPredicate(filter, rec) {
					continue
				}
				if !sub.deliver(Event{Type: event, Collection: collection, Record: rec}) {
					return
				}
			}
		}
	}()

	return sub, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

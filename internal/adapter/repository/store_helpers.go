package repository

import (
	"context"
	"sort"

	"assetbazaar/internal/domain/query"
	"assetbazaar/internal/infrastructure/datastore"
)

// selectOne returns the first record matching q, or nil.
func selectOne(ctx context.Context, store datastore.Store, q query.Query) (query.Record, error) {
	recs, err := store.Select(ctx, q.Take(1, 0))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

// selectEither runs q once per field with userID as its value and merges the
// results. The query model has no OR, and a participant can be on either side.
func selectEither(ctx context.Context, store datastore.Store, q query.Query, userID string, fields ...string) ([]query.Record, error) {
	seen := make(map[string]struct{})
	var merged []query.Record
	for _, f := range fields {
		recs, err := store.Select(ctx, q.Filter(query.Eq(f, userID)))
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			id, _ := r["id"].(string)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, r)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return query.Compare(merged[i]["created_at"], merged[j]["created_at"]) > 0
	})
	return merged, nil
}

func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

package query

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Matches reports whether rec satisfies every predicate and the text match of q.
// Comparisons against a missing or null field are false, as in SQL.
func Matches(q Query, rec Record) bool {
	for _, p := range q.Where {
		if !MatchPredicate(p, rec) {
			return false
		}
	}
	if q.Text != nil && !matchText(*q.Text, rec) {
		return false
	}
	return true
}

func MatchPredicate(p Predicate, rec Record) bool {
	v, ok := rec[p.Field]
	if !ok || v == nil {
		return p.Op == OpEq && p.Value == nil
	}

	switch p.Op {
	case OpEq:
		return p.Value != nil && Compare(v, p.Value) == 0
	case OpNeq:
		return p.Value != nil && Compare(v, p.Value) != 0
	case OpGte:
		return Compare(v, p.Value) >= 0
	case OpLte:
		return Compare(v, p.Value) <= 0
	case OpIn:
		values, _ := p.Value.([]string)
		s := fmt.Sprint(v)
		for _, candidate := range values {
			if candidate == s {
				return true
			}
		}
		return false
	}
	return false
}

func matchText(t TextMatch, rec Record) bool {
	term := strings.ToLower(strings.TrimSpace(t.Term))
	if term == "" {
		return true
	}
	for _, f := range t.Fields {
		if s, ok := rec[f].(string); ok && strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

// Apply filters, orders and pages recs in process. The input slice is not modified.
func Apply(q Query, recs []Record) []Record {
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if Matches(q, r) {
			out = append(out, r)
		}
	}

	Sort(out, q.OrderBy)

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []Record{}
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// Sort orders recs in place. Nulls sort lowest unless the order asks for them last.
func Sort(recs []Record, orders []Order) {
	if len(orders) == 0 {
		return
	}
	sort.SliceStable(recs, func(i, j int) bool {
		for _, o := range orders {
			a, b := recs[i][o.Field], recs[j][o.Field]
			if a == nil || b == nil {
				if a == nil && b == nil {
					continue
				}
				if o.NullsLast {
					return b == nil
				}
				// nil is the lowest value
				if o.Desc {
					return b == nil
				}
				return a == nil
			}
			c := Compare(a, b)
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// Compare orders two backend values. Numbers compare numerically whatever their
// Go type, timestamps compare chronologically (RFC 3339 strings included).
// NaN sorts above every other number and equals itself, as in Postgres.
func Compare(a, b any) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			nanA, nanB := math.IsNaN(fa), math.IsNaN(fb)
			switch {
			case nanA || nanB:
				switch {
				case nanA && nanB:
					return 0
				case nanA:
					return 1
				}
				return -1
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}

	if ta, ok := toTime(a); ok {
		if tb, ok := toTime(b); ok {
			return ta.Compare(tb)
		}
	}

	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			}
			return 1
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t != nil {
			return *t, true
		}
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

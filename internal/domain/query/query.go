// Package query describes reads against the backend collections as plain
// data. Backends translate a Query into their own dialect; nothing here
// touches the network.
package query

// Collections known to the backend.
const (
	Assets               = "assets"
	Profiles             = "profiles"
	Conversations        = "conversations"
	Messages             = "messages"
	Transactions         = "transactions"
	DueDiligenceRequests = "due_diligence_requests"
	VerificationItems    = "verification_items"
)

// Record is a raw backend row keyed by snake_case column names.
type Record = map[string]any

type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
	OpGte Op = "gte"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

type Predicate struct {
	Field string
	Op    Op
	Value any
}

func Eq(field string, value any) Predicate  { return Predicate{Field: field, Op: OpEq, Value: value} }
func Neq(field string, value any) Predicate { return Predicate{Field: field, Op: OpNeq, Value: value} }
func Gte(field string, value any) Predicate { return Predicate{Field: field, Op: OpGte, Value: value} }
func Lte(field string, value any) Predicate { return Predicate{Field: field, Op: OpLte, Value: value} }

// In matches any of values. An empty list matches nothing.
func In(field string, values ...string) Predicate {
	vs := make([]string, len(values))
	copy(vs, values)
	return Predicate{Field: field, Op: OpIn, Value: vs}
}

// TextMatch is a case-insensitive substring match on any of Fields.
type TextMatch struct {
	Fields []string
	Term   string
}

type Order struct {
	Field     string
	Desc      bool
	NullsLast bool
}

type Query struct {
	Collection string
	Where      []Predicate
	Text       *TextMatch
	OrderBy    []Order
	Limit      int
	Offset     int
}

func From(collection string) Query {
	return Query{Collection: collection}
}

func (q Query) Filter(preds ...Predicate) Query {
	where := make([]Predicate, 0, len(q.Where)+len(preds))
	where = append(where, q.Where...)
	q.Where = append(where, preds...)
	return q
}

func (q Query) Search(term string, fields ...string) Query {
	q.Text = &TextMatch{Fields: fields, Term: term}
	return q
}

func (q Query) Order(orders ...Order) Query {
	ob := make([]Order, 0, len(q.OrderBy)+len(orders))
	ob = append(ob, q.OrderBy...)
	q.OrderBy = append(ob, orders...)
	return q
}

func (q Query) Take(limit, offset int) Query {
	q.Limit = limit
	q.Offset = offset
	return q
}

// Predicate returns the first predicate on field, if any.
func (q Query) Predicate(field string) (Predicate, bool) {
	for _, p := range q.Where {
		if p.Field == field {
			return p, true
		}
	}
	return Predicate{}, false
}

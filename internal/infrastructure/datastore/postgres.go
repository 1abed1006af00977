package datastore

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"assetbazaar/internal/domain/query"
)

// NotifyChannel is the channel the row_changes trigger publishes on.
const NotifyChannel = "row_changes"

const uniqueViolation = "23505"

const unlistenTimeout = 5 * time.Second

// PostgresStore maps collections onto tables. Change events come from a
// trigger that calls pg_notify with the changed row as JSON.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects through the pgx stdlib driver.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	return NewPostgresStore(db), nil
}

func (s *PostgresStore) DB() *sqlx.DB { return s.db }

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

type sqlBuilder struct {
	sb   strings.Builder
	args []any
}

func (b *sqlBuilder) bind(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *sqlBuilder) where(preds []query.Predicate, text *query.TextMatch) {
	var conds []string
	for _, p := range preds {
		conds = append(conds, b.predicate(p))
	}
	if text != nil && len(text.Fields) > 0 {
		pattern := "%" + escapeLike(text.Term) + "%"
		param := b.bind(pattern)
		ors := make([]string, len(text.Fields))
		for i, f := range text.Fields {
			ors[i] = ident(f) + " ILIKE " + param
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}
	if len(conds) > 0 {
		b.sb.WriteString(" WHERE ")
		b.sb.WriteString(strings.Join(conds, " AND "))
	}
}

func (b *sqlBuilder) predicate(p query.Predicate) string {
	col := ident(p.Field)
	switch p.Op {
	case query.OpEq:
		if p.Value == nil {
			return col + " IS NULL"
		}
		return col + " = " + b.bind(p.Value)
	case query.OpNeq:
		return col + " <> " + b.bind(p.Value)
	case query.OpGte:
		return col + " >= " + b.bind(p.Value)
	case query.OpLte:
		return col + " <= " + b.bind(p.Value)
	case query.OpIn:
		values, _ := p.Value.([]string)
		if len(values) == 0 {
			return "FALSE"
		}
		params := make([]string, len(values))
		for i, v := range values {
			params[i] = b.bind(v)
		}
		return col + " IN (" + strings.Join(params, ", ") + ")"
	}
	return "FALSE"
}

func (b *sqlBuilder) orderBy(orders []query.Order) {
	if len(orders) == 0 {
		return
	}
	parts := make([]string, len(orders))
	for i, o := range orders {
		dir, nulls := "ASC", "NULLS FIRST"
		if o.Desc {
			dir, nulls = "DESC", "NULLS LAST"
		}
		if o.NullsLast {
			nulls = "NULLS LAST"
		}
		parts[i] = fmt.Sprintf("%s %s %s", ident(o.Field), dir, nulls)
	}
	b.sb.WriteString(" ORDER BY ")
	b.sb.WriteString(strings.Join(parts, ", "))
}

func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

func buildSelect(q query.Query) (string, []any) {
	b := &sqlBuilder{}
	b.sb.WriteString("SELECT * FROM ")
	b.sb.WriteString(ident(q.Collection))
	b.where(q.Where, q.Text)
	b.orderBy(q.OrderBy)
	if q.Limit > 0 {
		fmt.Fprintf(&b.sb, " LIMIT %d", q.Limit)
	}
	if q.Offset > 0 {
		fmt.Fprintf(&b.sb, " OFFSET %d", q.Offset)
	}
	return b.sb.String(), b.args
}

func sortedKeys(rec query.Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func buildInsert(collection string, rec query.Record) (string, []any) {
	b := &sqlBuilder{}
	keys := sortedKeys(rec)
	cols := make([]string, len(keys))
	params := make([]string, len(keys))
	for i, k := range keys {
		cols[i] = ident(k)
		params[i] = b.bind(rec[k])
	}
	fmt.Fprintf(&b.sb, "INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		ident(collection), strings.Join(cols, ", "), strings.Join(params, ", "))
	return b.sb.String(), b.args
}

func buildUpdate(collection string, patch query.Record, match []query.Predicate) (string, []any) {
	b := &sqlBuilder{}
	keys := sortedKeys(patch)
	sets := make([]string, len(keys))
	for i, k := range keys {
		sets[i] = ident(k) + " = " + b.bind(patch[k])
	}
	fmt.Fprintf(&b.sb, "UPDATE %s SET %s", ident(collection), strings.Join(sets, ", "))
	b.where(match, nil)
	return b.sb.String(), b.args
}

func scanRecords(rows *sqlx.Rows) ([]query.Record, error) {
	defer rows.Close()
	recs := []query.Record{}
	for rows.Next() {
		rec := query.Record{}
		if err := rows.MapScan(rec); err != nil {
			return nil, err
		}
		for k, v := range rec {
			if raw, ok := v.([]byte); ok {
				rec[k] = string(raw)
			}
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *PostgresStore) Select(ctx context.Context, q query.Query) ([]query.Record, error) {
	stmt, args := buildSelect(q)
	rows, err := s.db.QueryxContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres select %s: %w", q.Collection, err)
	}
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres select %s: %w", q.Collection, err)
	}
	return recs, nil
}

func (s *PostgresStore) Insert(ctx context.Context, inserts ...Insert) ([]query.Record, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("postgres begin: %w", err)
	}
	defer tx.Rollback()

	out := make([]query.Record, 0, len(inserts))
	for _, in := range inserts {
		stmt, args := buildInsert(in.Collection, prepare(in.Record))
		rows, err := tx.QueryxContext(ctx, stmt, args...)
		if err != nil {
			return nil, translatePgError(in.Collection, err)
		}
		recs, err := scanRecords(rows)
		if err != nil {
			return nil, translatePgError(in.Collection, err)
		}
		out = append(out, recs...)
	}

	if err := tx.Commit(); err != nil {
		return nil, translatePgError("commit", err)
	}
	return out, nil
}

func translatePgError(collection string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return fmt.Errorf("postgres insert %s: %w", collection, err)
}

func (s *PostgresStore) Update(ctx context.Context, collection string, patch query.Record, match []query.Predicate) (int, error) {
	if len(patch) == 0 {
		return 0, nil
	}
	stmt, args := buildUpdate(collection, patch, match)
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("postgres update %s: %w", collection, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("postgres update %s: %w", collection, err)
	}
	return int(n), nil
}

type notification struct {
	Table  string       `json:"table"`
	Op     EventType    `json:"op"`
	Record query.Record `json:"record"`
}

func decodeNotification(payload string) (notification, error) {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return n, fmt.Errorf("decode notification: %w", err)
	}
	return n, nil
}

// Subscribe holds a dedicated connection in LISTEN mode for the lifetime of
// the subscription.
func (s *PostgresStore) Subscribe(ctx context.Context, collection string, event EventType, filter query.Predicate) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	conn, err := s.db.Conn(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("postgres listen: %w", err)
	}

	sub := newSubscription(cancel)
	go func() {
		defer conn.Close()
		defer sub.Unsubscribe()

		err := conn.Raw(func(driverConn any) error {
			pc := driverConn.(*stdlib.Conn).Conn()
			if _, err := pc.Exec(ctx, "LISTEN "+ident(NotifyChannel)); err != nil {
				return releaseListener(pc, err)
			}
			return releaseListener(pc, s.listen(ctx, pc, sub, collection, event, filter))
		})
		if err != nil && ctx.Err() == nil {
			sub.fail(fmt.Errorf("postgres listen %s: %w", collection, err))
		}
	}()

	return sub, nil
}

type listenerConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	IsClosed() bool
}

// releaseListener stops the connection listening before database/sql takes
// it back. A connection that cannot be cleaned is reported as bad so the
// pool discards it instead of reusing it.
func releaseListener(conn listenerConn, err error) error {
	if conn.IsClosed() {
		return driver.ErrBadConn
	}
	ctx, cancel := context.WithTimeout(context.Background(), unlistenTimeout)
	defer cancel()
	if _, unlistenErr := conn.Exec(ctx, "UNLISTEN *"); unlistenErr != nil {
		return driver.ErrBadConn
	}
	return err
}

func (s *PostgresStore) listen(ctx context.Context, pc *pgx.Conn, sub *Subscription, collection string, event EventType, filter query.Predicate) error {
	for {
		msg, err := pc.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		n, err := decodeNotification(msg.Payload)
		if err != nil {
			sub.fail(err)
			continue
		}
		if n.Table != collection || n.Op != event {
			continue
		}
		if filter.Field != "" && !query.MatchPredicate(filter, n.Record) {
			continue
		}
		if !sub.deliver(Event{Type: event, Collection: collection, Record: n.Record}) {
			return nil
		}
	}
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

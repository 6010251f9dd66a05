// Package source provides ready-made processors that read watermarks from
// PostgreSQL.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Sequence advances the sentinel to nextval() of a PostgreSQL sequence. It
// always finds something new, so it never reports empty.
type Sequence struct {
	db   sqlx.QueryerContext
	name string
}

// NewSequence creates a processor over the named sequence.
func NewSequence(db sqlx.QueryerContext, name string) *Sequence {
	return &Sequence{db: db, name: name}
}

func (s *Sequence) Next(ctx context.Context, current *int64) (*int64, error) {
	var next int64
	if err := sqlx.GetContext(ctx, s.db, &next, "SELECT nextval($1::regclass)", s.name); err != nil {
		return nil, fmt.Errorf("nextval %s failed: %w", s.name, err)
	}
	return &next, nil
}

// BatchHandler receives the half-open range (from, to] a table processor is
// about to commit. Returning an error keeps the sentinel where it was.
type BatchHandler func(ctx context.Context, from *int64, to int64) error

// Table tracks the high-water mark of an integer column: the next sentinel is
// the largest value above the current one, or empty when there is none.
type Table struct {
	db      sqlx.QueryerContext
	query   string
	limit   int
	handler BatchHandler
}

// TableConfig configures a Table processor.
type TableConfig struct {
	Table  string
	Column string
	// Limit bounds how many rows one step may cover. 0 means unbounded.
	Limit int
}

// NewTable creates a table processor. handler may be nil.
func NewTable(db sqlx.QueryerContext, cfg TableConfig, handler BatchHandler) *Table {
	return &Table{
		db:      db,
		query:   buildTableQuery(cfg),
		limit:   cfg.Limit,
		handler: handler,
	}
}

func buildTableQuery(cfg TableConfig) string {
	table := pq.QuoteIdentifier(cfg.Table)
	column := pq.QuoteIdentifier(cfg.Column)
	if cfg.Limit > 0 {
		return fmt.Sprintf(
			"SELECT max(%[2]s) FROM (SELECT %[2]s FROM %[1]s WHERE %[2]s > $1 ORDER BY %[2]s LIMIT $2) batch",
			table, column,
		)
	}
	return fmt.Sprintf("SELECT max(%[2]s) FROM %[1]s WHERE %[2]s > $1", table, column)
}

func (t *Table) Next(ctx context.Context, current *int64) (*int64, error) {
	after := int64(math.MinInt64)
	if current != nil {
		after = *current
	}

	args := []any{after}
	if t.limit > 0 {
		args = append(args, t.limit)
	}

	var next sql.NullInt64
	if err := sqlx.GetContext(ctx, t.db, &next, t.query, args...); err != nil {
		return nil, fmt.Errorf("high-water query failed: %w", err)
	}
	if !next.Valid {
		return nil, nil
	}

	if t.handler != nil {
		if err := t.handler(ctx, current, next.Int64); err != nil {
			return nil, fmt.Errorf("batch handler failed: %w", err)
		}
	}
	return &next.Int64, nil
}

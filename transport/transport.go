// Package transport owns the low-level round-trip that executes
// compiled SQL text against a database and hands raw rows back. A
// transport also exposes the escaping functions of its dialect so
// callers can build safe fragments without knowing the engine.
package transport

import (
	"context"
	"database/sql"
	"time"

	"github.com/sqlbridge/sqlbridge/runtime/types"
)

// Mode distinguishes reads from writes so statements can be routed,
// e.g. to a replica versus the primary.
type Mode int

const (
	Read Mode = iota
	Write
)

// String returns the routing name of the mode.
func (m Mode) String() string {
	if m == Write {
		return "write"
	}
	return "read"
}

// Result carries the outcome of one executed statement. Rows preserve
// the column order of the statement; GeneratedID is the identifier the
// engine reports for an insert, when it reports one.
type Result struct {
	Rows         []*types.KeyMap
	GeneratedID  int64
	RowsAffected int64
}

// Transport executes compiled SQL text. Execution is the single
// suspend-point of the engine: compilation never blocks, and
// cancellation travels through the context.
type Transport interface {
	Execute(ctx context.Context, sqlText string, mode Mode) (*Result, error)
	EscapeIdentifier(name string, raw bool) string
	EscapeValue(v interface{}) string
	Close() error
}

// scanRows drains rows into ordered KeyMaps, one per row, converting
// byte slices to strings.
func scanRows(rows *sql.Rows) ([]*types.KeyMap, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []*types.KeyMap
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := types.NewKeyMap()
		for i, col := range columns {
			row.Set(col, normalizeScanned(values[i]))
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func normalizeScanned(v interface{}) interface{} {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(types.DateTimeLayout)
	default:
		return v
	}
}

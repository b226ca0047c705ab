package transport

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/sqlbridge/sqlbridge/query/sqlgen"
)

// SQLite runs everything against one file-backed pool; there is no
// replica to route reads to.
type SQLite struct {
	db      *sql.DB
	dialect sqlgen.SQLiteDialect
	logger  *slog.Logger
}

// NewSQLite opens the database at path (":memory:" works).
func NewSQLite(path string, logger *slog.Logger) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite transport requires a database path")
	}
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &SQLite{db: db, logger: logger}, nil
}

// Execute runs sqlText; mode only picks exec versus query semantics.
func (t *SQLite) Execute(ctx context.Context, sqlText string, mode Mode) (*Result, error) {
	t.logger.DebugContext(ctx, "executing statement", "mode", mode.String())
	if mode == Write {
		res, err := t.db.ExecContext(ctx, sqlText)
		if err != nil {
			return nil, err
		}
		id, _ := res.LastInsertId()
		affected, _ := res.RowsAffected()
		return &Result{GeneratedID: id, RowsAffected: affected}, nil
	}

	rows, err := t.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mapped, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	return &Result{Rows: mapped}, nil
}

// EscapeIdentifier quotes an identifier for SQLite.
func (t *SQLite) EscapeIdentifier(name string, raw bool) string {
	return t.dialect.EscapeIdentifier(name, raw)
}

// EscapeValue renders a value as a SQLite literal.
func (t *SQLite) EscapeValue(v interface{}) string {
	return t.dialect.EscapeValue(v)
}

// Close closes the pool.
func (t *SQLite) Close() error {
	return t.db.Close()
}

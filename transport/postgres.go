package transport

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/sqlbridge/sqlbridge/query/sqlgen"
)

// PostgresConfig configures the PostgreSQL transport.
type PostgresConfig struct {
	PrimaryDSN string
	ReplicaDSN string
}

// Postgres routes writes to the primary and reads to the replica.
// PostgreSQL reports generated identifiers only through RETURNING, so
// Result.GeneratedID stays zero; callers supply identifiers up front.
type Postgres struct {
	primary *sql.DB
	replica *sql.DB
	dialect sqlgen.PostgresDialect
	logger  *slog.Logger
}

// NewPostgres opens the primary (and optional replica) pools.
func NewPostgres(cfg PostgresConfig, logger *slog.Logger) (*Postgres, error) {
	if cfg.PrimaryDSN == "" {
		return nil, fmt.Errorf("postgres transport requires a primary DSN")
	}
	if logger == nil {
		logger = slog.Default()
	}

	primary, err := sql.Open("postgres", cfg.PrimaryDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open primary: %w", err)
	}

	replica := primary
	if cfg.ReplicaDSN != "" {
		replica, err = sql.Open("postgres", cfg.ReplicaDSN)
		if err != nil {
			primary.Close()
			return nil, fmt.Errorf("failed to open replica: %w", err)
		}
	}

	return &Postgres{primary: primary, replica: replica, logger: logger}, nil
}

// Execute runs sqlText, routing by mode.
func (t *Postgres) Execute(ctx context.Context, sqlText string, mode Mode) (*Result, error) {
	t.logger.DebugContext(ctx, "executing statement", "mode", mode.String())
	if mode == Write {
		res, err := t.primary.ExecContext(ctx, sqlText)
		if err != nil {
			return nil, err
		}
		affected, _ := res.RowsAffected()
		return &Result{RowsAffected: affected}, nil
	}

	rows, err := t.replica.QueryContext(ctx, sqlText)
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

// EscapeIdentifier quotes an identifier for PostgreSQL.
func (t *Postgres) EscapeIdentifier(name string, raw bool) string {
	return t.dialect.EscapeIdentifier(name, raw)
}

// EscapeValue renders a value as a PostgreSQL literal.
func (t *Postgres) EscapeValue(v interface{}) string {
	return t.dialect.EscapeValue(v)
}

// Close closes both pools.
func (t *Postgres) Close() error {
	err := t.primary.Close()
	if t.replica != t.primary {
		if rerr := t.replica.Close(); err == nil {
			err = rerr
		}
	}
	return err
}

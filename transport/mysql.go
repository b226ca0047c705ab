package transport

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/go-sql-driver/mysql"
	goversion "github.com/hashicorp/go-version"

	"github.com/sqlbridge/sqlbridge/query/sqlgen"
)

// MinMySQLVersion is the oldest server the engine supports; earlier
// servers lack JSON_MERGE_PATCH, which structured-field patches rely on.
const MinMySQLVersion = "5.7.0"

// MySQLConfig configures the MySQL transport. ReplicaDSN is optional;
// when empty, reads run against the primary too.
type MySQLConfig struct {
	PrimaryDSN string
	ReplicaDSN string
}

// DSN builds a driver DSN from connection details.
func DSN(user, password, host string, port int, database string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", host, port)
	cfg.DBName = database
	cfg.ParseTime = false
	return cfg.FormatDSN()
}

// MySQL routes writes to the primary and reads to the replica.
type MySQL struct {
	primary *sql.DB
	replica *sql.DB
	dialect sqlgen.MySQLDialect
	logger  *slog.Logger
}

// NewMySQL opens the primary (and optional replica) pools.
func NewMySQL(cfg MySQLConfig, logger *slog.Logger) (*MySQL, error) {
	if cfg.PrimaryDSN == "" {
		return nil, fmt.Errorf("mysql transport requires a primary DSN")
	}
	if logger == nil {
		logger = slog.Default()
	}

	primary, err := sql.Open("mysql", cfg.PrimaryDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open primary: %w", err)
	}

	replica := primary
	if cfg.ReplicaDSN != "" {
		replica, err = sql.Open("mysql", cfg.ReplicaDSN)
		if err != nil {
			primary.Close()
			return nil, fmt.Errorf("failed to open replica: %w", err)
		}
	}

	return &MySQL{primary: primary, replica: replica, logger: logger}, nil
}

// CheckVersion verifies the server meets MinMySQLVersion.
func (t *MySQL) CheckVersion(ctx context.Context) error {
	var raw string
	if err := t.primary.QueryRowContext(ctx, "SELECT VERSION()").Scan(&raw); err != nil {
		return fmt.Errorf("failed to read server version: %w", err)
	}
	return checkServerVersion(raw, MinMySQLVersion)
}

// checkServerVersion compares a raw server version string, which may
// carry a vendor suffix like "8.0.36-0ubuntu0", against minimum.
func checkServerVersion(raw, minimum string) error {
	core := raw
	for i, r := range raw {
		if (r < '0' || r > '9') && r != '.' {
			core = raw[:i]
			break
		}
	}
	server, err := goversion.NewVersion(core)
	if err != nil {
		return fmt.Errorf("unparseable server version %q: %w", raw, err)
	}
	min, err := goversion.NewVersion(minimum)
	if err != nil {
		return err
	}
	if server.LessThan(min) {
		return fmt.Errorf("server version %s is below the supported minimum %s", server, min)
	}
	return nil
}

// Execute runs sqlText, routing by mode.
func (t *MySQL) Execute(ctx context.Context, sqlText string, mode Mode) (*Result, error) {
	t.logger.DebugContext(ctx, "executing statement", "mode", mode.String())
	if mode == Write {
		res, err := t.primary.ExecContext(ctx, sqlText)
		if err != nil {
			return nil, err
		}
		id, _ := res.LastInsertId()
		affected, _ := res.RowsAffected()
		return &Result{GeneratedID: id, RowsAffected: affected}, nil
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

// EscapeIdentifier quotes an identifier for MySQL.
func (t *MySQL) EscapeIdentifier(name string, raw bool) string {
	return t.dialect.EscapeIdentifier(name, raw)
}

// EscapeValue renders a value as a MySQL literal.
func (t *MySQL) EscapeValue(v interface{}) string {
	return t.dialect.EscapeValue(v)
}

// Close closes both pools.
func (t *MySQL) Close() error {
	err := t.primary.Close()
	if t.replica != t.primary {
		if rerr := t.replica.Close(); err == nil {
			err = rerr
		}
	}
	return err
}

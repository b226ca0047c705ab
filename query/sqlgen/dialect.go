// Package sqlgen compiles query options and write payloads into
// executable SQL text for one dialect at a time. Every user-supplied
// value passes through the dialect's literal escaping and every
// column, table and alias name through its identifier quoting before
// either reaches generated SQL.
package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// Dialect supplies the escaping and syntax details that differ between
// database engines. Identifier and value escaping are distinct on
// purpose: identifiers are quoted, values are neutralized literals.
type Dialect interface {
	Name() string

	// EscapeIdentifier quotes a column, table or alias name. With raw
	// set, a dotted name stays one identifier with a literal dot (used
	// for output aliases such as "author.id"); otherwise dots split the
	// name into a qualified reference.
	EscapeIdentifier(name string, raw bool) string

	// EscapeValue renders a value as a safe SQL literal.
	EscapeValue(v interface{}) string

	// Concat renders a concatenation over already-escaped columns.
	Concat(cols []string) string

	// Limit renders the pagination clause for skip rows skipped and
	// count rows returned. A count of zero means unbounded: the clause
	// applies only the offset.
	Limit(skip, count int) string

	// MergeJSON renders an expression merging the escaped JSON literal
	// into the escaped column.
	MergeJSON(column, literal string) string
}

// NewDialect returns the dialect for a provider name.
func NewDialect(provider string) (Dialect, error) {
	switch provider {
	case "mysql":
		return MySQLDialect{}, nil
	case "postgresql", "postgres":
		return PostgresDialect{}, nil
	case "sqlite":
		return SQLiteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// MySQLDialect escapes for MySQL and MariaDB.
type MySQLDialect struct{}

func (MySQLDialect) Name() string { return "mysql" }

func (MySQLDialect) EscapeIdentifier(name string, raw bool) string {
	quote := func(s string) string {
		return "`" + strings.ReplaceAll(s, "`", "``") + "`"
	}
	if raw || !strings.Contains(name, ".") {
		return quote(name)
	}
	parts := strings.SplitN(name, ".", 2)
	return quote(parts[0]) + "." + quote(parts[1])
}

func (MySQLDialect) EscapeValue(v interface{}) string {
	s, done := scalarLiteral(v)
	if done {
		return s
	}
	var b strings.Builder
	b.WriteByte('\'')
	// Byte-wise: every escaped character is ASCII, and ranging over
	// runes would rewrite invalid UTF-8 as U+FFFD.
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'':
			b.WriteString(`\'`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		case 0x1a:
			b.WriteString(`\Z`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func (MySQLDialect) Concat(cols []string) string {
	return "CONCAT(" + strings.Join(cols, ", ") + ")"
}

func (MySQLDialect) Limit(skip, count int) string {
	if count <= 0 {
		// MySQL has no bare OFFSET; the documented idiom for an offset
		// without a row cap is an all-ones count.
		return fmt.Sprintf("LIMIT %d, 18446744073709551615", skip)
	}
	return fmt.Sprintf("LIMIT %d, %d", skip, count)
}

func (MySQLDialect) MergeJSON(column, literal string) string {
	return fmt.Sprintf("JSON_MERGE_PATCH(COALESCE(%s, '{}'), %s)", column, literal)
}

// PostgresDialect escapes for PostgreSQL, delegating quoting to lib/pq.
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return "postgres" }

func (PostgresDialect) EscapeIdentifier(name string, raw bool) string {
	if raw || !strings.Contains(name, ".") {
		return pq.QuoteIdentifier(name)
	}
	parts := strings.SplitN(name, ".", 2)
	return pq.QuoteIdentifier(parts[0]) + "." + pq.QuoteIdentifier(parts[1])
}

func (PostgresDialect) EscapeValue(v interface{}) string {
	s, done := scalarLiteral(v)
	if done {
		return s
	}
	return pq.QuoteLiteral(s)
}

func (PostgresDialect) Concat(cols []string) string {
	return "(" + strings.Join(cols, " || ") + ")"
}

func (PostgresDialect) Limit(skip, count int) string {
	if count <= 0 {
		return fmt.Sprintf("OFFSET %d", skip)
	}
	return fmt.Sprintf("LIMIT %d OFFSET %d", count, skip)
}

func (PostgresDialect) MergeJSON(column, literal string) string {
	return fmt.Sprintf("(COALESCE(%s, '{}'::jsonb) || %s::jsonb)", column, literal)
}

// SQLiteDialect escapes for SQLite.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return "sqlite" }

func (SQLiteDialect) EscapeIdentifier(name string, raw bool) string {
	quote := func(s string) string {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	if raw || !strings.Contains(name, ".") {
		return quote(name)
	}
	parts := strings.SplitN(name, ".", 2)
	return quote(parts[0]) + "." + quote(parts[1])
}

func (SQLiteDialect) EscapeValue(v interface{}) string {
	s, done := scalarLiteral(v)
	if done {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (SQLiteDialect) Concat(cols []string) string {
	return "(" + strings.Join(cols, " || ") + ")"
}

func (SQLiteDialect) Limit(skip, count int) string {
	if count <= 0 {
		// SQLite requires a LIMIT before OFFSET; -1 means unbounded.
		return fmt.Sprintf("LIMIT -1 OFFSET %d", skip)
	}
	return fmt.Sprintf("LIMIT %d OFFSET %d", count, skip)
}

func (SQLiteDialect) MergeJSON(column, literal string) string {
	return fmt.Sprintf("json_patch(COALESCE(%s, '{}'), %s)", column, literal)
}

// scalarLiteral renders nil and numeric values directly. For everything
// else it returns the string form with done=false so the caller applies
// its quote escaping.
func scalarLiteral(v interface{}) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "NULL", true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		if t {
			return "1", true
		}
		return "0", true
	case string:
		return t, false
	default:
		return fmt.Sprintf("%v", t), false
	}
}

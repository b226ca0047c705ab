package sqlgen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sqlbridge/sqlbridge/runtime/types"
)

// Version is the library version stamped into every statement's
// trailing comment for server-side log correlation.
const Version = "0.4.0"

const statementComment = " /* sqlbridge v" + Version + " */"

// Source names the base table of a query and the alias it is read under.
type Source struct {
	Table string
	Alias string
}

// Column maps a physical key (column name, qualified name or compound
// expression) onto its output alias.
type Column struct {
	Key   string
	Alias string
}

// Relation describes one included join: the alias the joined columns
// are prefixed with, the joined table and the parent/child columns the
// join matches on.
type Relation struct {
	Alias        string
	Table        string
	ParentColumn string
	ChildColumn  string
}

// QueryOptions is the boundary value between the query builder and the
// generator. It is immutable once produced; compiling it repeatedly
// yields equivalent statements.
type QueryOptions struct {
	Source      Source
	Columns     []Column
	Relations   []Relation
	Constraints *types.ConstraintMap
	Sorting     []string
	Skip        int
	Limit       int
}

// SortDescendingPrefix marks a sort token as descending. Ascending and
// descending tokens share one ordered list; direction derives from a
// single leading character test.
const SortDescendingPrefix = "-"

// Generator compiles query options and write payloads into SQL text for
// one dialect.
type Generator struct {
	dialect Dialect
}

// NewGenerator creates a generator for the dialect.
func NewGenerator(d Dialect) *Generator {
	return &Generator{dialect: d}
}

// Dialect returns the generator's dialect.
func (g *Generator) Dialect() Dialect {
	return g.dialect
}

// GenerateSelect compiles options into one SELECT statement.
func (g *Generator) GenerateSelect(opts *QueryOptions) (string, error) {
	sql, err := g.generateSelect(opts)
	if err != nil {
		return "", err
	}
	return sql + statementComment, nil
}

// generateSelect compiles without the trailing comment so the same path
// serves sub-query embedding.
func (g *Generator) generateSelect(opts *QueryOptions) (string, error) {
	if opts == nil || opts.Source.Table == "" {
		return "", fmt.Errorf("%w: query options have no source table", types.ErrMissingConfiguration)
	}

	var b strings.Builder
	b.WriteString("SELECT ")

	if len(opts.Columns) == 0 {
		return "", fmt.Errorf("%w: query options have no columns", types.ErrMissingConfiguration)
	}
	cols := make([]string, 0, len(opts.Columns))
	for _, c := range opts.Columns {
		cols = append(cols, g.escapeKey(c.Key)+" AS "+g.dialect.EscapeIdentifier(c.Alias, true))
	}
	b.WriteString(strings.Join(cols, ", "))

	b.WriteString(" FROM ")
	b.WriteString(g.dialect.EscapeIdentifier(opts.Source.Table, true))
	b.WriteString(" AS ")
	b.WriteString(g.dialect.EscapeIdentifier(opts.Source.Alias, true))

	for _, rel := range opts.Relations {
		b.WriteString(" LEFT OUTER JOIN ")
		b.WriteString(g.dialect.EscapeIdentifier(rel.Table, true))
		b.WriteString(" AS ")
		b.WriteString(g.dialect.EscapeIdentifier(rel.Alias, true))
		b.WriteString(" ON ")
		b.WriteString(g.dialect.EscapeIdentifier(opts.Source.Alias+"."+rel.ParentColumn, false))
		b.WriteString(" = ")
		b.WriteString(g.dialect.EscapeIdentifier(rel.Alias+"."+rel.ChildColumn, false))
	}

	where, err := g.buildWhere(opts.Constraints)
	if err != nil {
		return "", err
	}
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}

	if len(opts.Sorting) > 0 {
		tokens := make([]string, 0, len(opts.Sorting))
		for _, tok := range opts.Sorting {
			direction := "ASC"
			if strings.HasPrefix(tok, SortDescendingPrefix) {
				direction = "DESC"
				tok = strings.TrimPrefix(tok, SortDescendingPrefix)
			}
			tokens = append(tokens, g.escapeKey(tok)+" "+direction)
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(tokens, ", "))
	}

	// Limit of zero means unbounded, but a skip still needs its clause
	// or the offset would vanish from the statement.
	if opts.Limit > 0 || opts.Skip > 0 {
		b.WriteString(" ")
		b.WriteString(g.dialect.Limit(opts.Skip, opts.Limit))
	}

	return b.String(), nil
}

// GenerateInsert compiles a flat write payload into an INSERT statement.
// Payload keys are physical column names; order follows the payload.
func (g *Generator) GenerateInsert(table string, payload *types.KeyMap) (string, error) {
	if table == "" || payload == nil || payload.Len() == 0 {
		return "", fmt.Errorf("%w: insert needs a table and a non-empty payload", types.ErrMissingConfiguration)
	}

	cols := make([]string, 0, payload.Len())
	vals := make([]string, 0, payload.Len())
	for _, p := range payload.Pairs() {
		cols = append(cols, g.dialect.EscapeIdentifier(p.Key, true))
		v, err := g.insertValue(p.Value)
		if err != nil {
			return "", err
		}
		vals = append(vals, v)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		g.dialect.EscapeIdentifier(table, true),
		strings.Join(cols, ", "),
		strings.Join(vals, ", "))
	return sql + statementComment, nil
}

// GenerateUpdate compiles a flat write payload into an UPDATE statement
// targeting one row by identifier.
func (g *Generator) GenerateUpdate(table string, payload *types.KeyMap, idColumn string, id interface{}) (string, error) {
	if table == "" || payload == nil || payload.Len() == 0 {
		return "", fmt.Errorf("%w: update needs a table and a non-empty payload", types.ErrMissingConfiguration)
	}
	if idColumn == "" {
		return "", fmt.Errorf("%w: update needs an identifier column", types.ErrMissingConfiguration)
	}

	sets := make([]string, 0, payload.Len())
	for _, p := range payload.Pairs() {
		sets = append(sets, g.assignment(p.Key, p.Value))
	}

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		g.dialect.EscapeIdentifier(table, true),
		strings.Join(sets, ", "),
		g.dialect.EscapeIdentifier(idColumn, true),
		g.dialect.EscapeValue(types.NormalizeValue(id)))
	return sql + statementComment, nil
}

// assignment renders one SET clause entry. Increment and JSONPatch
// values must reference their own column, so the escaping functions are
// injected here, at the last moment before rendering; the wrapper
// values themselves stay dialect-free.
func (g *Generator) assignment(column string, value interface{}) string {
	k := g.dialect.EscapeIdentifier(column, true)
	switch t := value.(type) {
	case types.Increment:
		return k + " = " + k + " + " + g.dialect.EscapeValue(t.Delta)
	case types.JSONPatch:
		return k + " = " + g.dialect.MergeJSON(k, g.dialect.EscapeValue(jsonLiteral(t.Data)))
	default:
		return k + " = " + g.dialect.EscapeValue(types.NormalizeValue(value))
	}
}

// insertValue renders one VALUES entry. An Increment on a fresh row
// degenerates to its delta; a JSONPatch to its document.
func (g *Generator) insertValue(value interface{}) (string, error) {
	switch t := value.(type) {
	case types.Increment:
		return g.dialect.EscapeValue(t.Delta), nil
	case types.JSONPatch:
		return g.dialect.EscapeValue(jsonLiteral(t.Data)), nil
	default:
		return g.dialect.EscapeValue(types.NormalizeValue(value)), nil
	}
}

// escapeKey escapes a physical key: compound keys become concatenation
// expressions, dotted keys qualified references, plain keys identifiers.
func (g *Generator) escapeKey(key string) string {
	if types.IsCompound(key) {
		parts := types.CompoundParts(key)
		escaped := make([]string, 0, len(parts))
		for _, p := range parts {
			escaped = append(escaped, g.dialect.EscapeIdentifier(p, false))
		}
		return g.dialect.Concat(escaped)
	}
	return g.dialect.EscapeIdentifier(key, false)
}

func jsonLiteral(data map[string]interface{}) string {
	if data == nil {
		return "{}"
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

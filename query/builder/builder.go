// Package builder provides the fluent query builder. A Query
// accumulates selection, included relations, constraints, sorting and
// pagination against one class, validating every referenced key against
// the schema registry, and resolves into sqlgen.QueryOptions.
package builder

import (
	"fmt"
	"strings"

	"github.com/sqlbridge/sqlbridge/query/sqlgen"
	"github.com/sqlbridge/sqlbridge/runtime/types"
	"github.com/sqlbridge/sqlbridge/schema"
)

// Query is the fluent constraint builder. Methods return the receiver
// for chaining; the first misuse is recorded and surfaced by Err and
// ToQueryOptions, so a malformed query never reaches the transport.
type Query struct {
	class       string
	desc        *schema.Description
	registry    *schema.Registry
	selection   []string
	selected    bool
	includes    []string
	constraints *types.ConstraintMap
	sorting     []string
	skip        int
	limit       int
	err         error
}

// NewQuery creates a query over class.
func NewQuery(class string, registry *schema.Registry) (*Query, error) {
	desc, err := registry.Describe(class)
	if err != nil {
		return nil, err
	}
	return &Query{
		class:       class,
		desc:        desc,
		registry:    registry,
		constraints: types.NewConstraintMap(),
	}, nil
}

// Class returns the queried class name.
func (q *Query) Class() string {
	return q.class
}

// Err returns the first recorded misuse, if any.
func (q *Query) Err() error {
	return q.err
}

func (q *Query) setErr(err error) *Query {
	if q.err == nil {
		q.err = err
	}
	return q
}

// qualify prefixes a resolved physical column with the source alias.
// Joined statements reference parent and child columns that often share
// a name (id, created_at); unqualified references would be ambiguous
// there. Compound parts qualify individually.
func (q *Query) qualify(col string) string {
	parts := types.CompoundParts(col)
	for i, p := range parts {
		if !strings.Contains(p, ".") {
			parts[i] = q.desc.Table + "." + p
		}
	}
	return strings.Join(parts, types.CompoundSeparator)
}

// resolveKey validates key against the schema and maps it onto its
// qualified physical column form. Any-of keys resolve part by part and
// stay joined; compound keys resolve through the compound column lookup.
func (q *Query) resolveKey(key string) (string, error) {
	parts := types.AnyOfKeys(key)
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: empty key on class %q", types.ErrInvalidKey, q.class)
	}
	resolved := make([]string, 0, len(parts))
	for _, part := range parts {
		col, ok := q.desc.ColumnFor(part)
		if !ok {
			return "", fmt.Errorf("%w: key %q is not declared on class %q", types.ErrInvalidKey, part, q.class)
		}
		resolved = append(resolved, q.qualify(col))
	}
	joined := resolved[0]
	for _, col := range resolved[1:] {
		joined += types.AnyOfSeparator + col
	}
	return joined, nil
}

func (q *Query) constrain(key string, kind types.Kind, value interface{}) *Query {
	if q.err != nil {
		return q
	}
	col, err := q.resolveKey(key)
	if err != nil {
		return q.setErr(err)
	}
	q.constraints.Set(col, kind, value)
	return q
}

// EqualTo constrains key to equal value. Booleans are normalized to 0/1
// and times to the storage datetime representation.
func (q *Query) EqualTo(key string, value interface{}) *Query {
	return q.constrain(key, types.KindEqualTo, types.NormalizeValue(value))
}

// NotEqualTo constrains key to differ from value.
func (q *Query) NotEqualTo(key string, value interface{}) *Query {
	return q.constrain(key, types.KindNotEqualTo, types.NormalizeValue(value))
}

// GreaterThan constrains key to exceed value.
func (q *Query) GreaterThan(key string, value interface{}) *Query {
	return q.constrain(key, types.KindGreaterThan, types.NormalizeValue(value))
}

// GreaterThanOrEqualTo constrains key to be at least value.
func (q *Query) GreaterThanOrEqualTo(key string, value interface{}) *Query {
	return q.constrain(key, types.KindGreaterThanOrEqualTo, types.NormalizeValue(value))
}

// LessThan constrains key to be below value.
func (q *Query) LessThan(key string, value interface{}) *Query {
	return q.constrain(key, types.KindLessThan, types.NormalizeValue(value))
}

// LessThanOrEqualTo constrains key to be at most value.
func (q *Query) LessThanOrEqualTo(key string, value interface{}) *Query {
	return q.constrain(key, types.KindLessThanOrEqualTo, types.NormalizeValue(value))
}

// Exists constrains key to be non-null.
func (q *Query) Exists(key string) *Query {
	return q.constrain(key, types.KindExists, true)
}

// DoesNotExist constrains key to be null.
func (q *Query) DoesNotExist(key string) *Query {
	return q.constrain(key, types.KindExists, false)
}

// ContainedIn constrains key to one of values.
func (q *Query) ContainedIn(key string, values ...interface{}) *Query {
	return q.constrain(key, types.KindContainedIn, types.NormalizeValues(values))
}

// NotContainedIn constrains key to none of values.
func (q *Query) NotContainedIn(key string, values ...interface{}) *Query {
	return q.constrain(key, types.KindNotContainedIn, types.NormalizeValues(values))
}

// ContainedInOrDoesNotExist constrains key to one of values or null.
func (q *Query) ContainedInOrDoesNotExist(key string, values ...interface{}) *Query {
	return q.constrain(key, types.KindContainedInOrDoesNotExist, types.NormalizeValues(values))
}

// StartsWith constrains key to values beginning with term.
func (q *Query) StartsWith(key string, term string) *Query {
	return q.constrain(key, types.KindStartsWith, term)
}

// EndsWith constrains key to values ending with term.
func (q *Query) EndsWith(key string, term string) *Query {
	return q.constrain(key, types.KindEndsWith, term)
}

// Contains constrains key to values containing term. The key may join
// several keys with the any-of separator, matching when any of them
// contains the term.
func (q *Query) Contains(key string, term string) *Query {
	return q.constrain(key, types.KindContains, term)
}

// ContainsEither constrains key to values containing any of terms.
func (q *Query) ContainsEither(key string, terms ...string) *Query {
	return q.constrain(key, types.KindContainsEither, terms)
}

// ContainsAll constrains key to values containing every term.
func (q *Query) ContainsAll(key string, terms ...string) *Query {
	return q.constrain(key, types.KindContainsAll, terms)
}

// Select narrows the projection to keys. Calling it with no keys is a
// misuse; the default selection applies only when Select is never
// called at all.
func (q *Query) Select(keys ...string) *Query {
	if q.err != nil {
		return q
	}
	if len(keys) == 0 {
		return q.setErr(fmt.Errorf("%w: select requires at least one key", types.ErrMissingConfiguration))
	}
	for _, key := range keys {
		if !q.desc.HasKey(key) {
			return q.setErr(fmt.Errorf("%w: key %q is not declared on class %q", types.ErrInvalidKey, key, q.class))
		}
	}
	q.selection = append(q.selection, keys...)
	q.selected = true
	return q
}

// Include joins the named relations into the result. Included relation
// columns are appended to the projection regardless of selection state.
func (q *Query) Include(aliases ...string) *Query {
	if q.err != nil {
		return q
	}
	for _, alias := range aliases {
		if _, ok := q.desc.RelationFor(alias); !ok {
			return q.setErr(fmt.Errorf("%w: relation %q is not declared on class %q", types.ErrInvalidKey, alias, q.class))
		}
		q.includes = append(q.includes, alias)
	}
	return q
}

// SortBy appends ascending sort keys.
func (q *Query) SortBy(keys ...string) *Query {
	return q.sort("", keys)
}

// SortByDescending appends descending sort keys.
func (q *Query) SortByDescending(keys ...string) *Query {
	return q.sort(sqlgen.SortDescendingPrefix, keys)
}

func (q *Query) sort(prefix string, keys []string) *Query {
	if q.err != nil {
		return q
	}
	for _, key := range keys {
		col, ok := q.desc.ColumnFor(key)
		if !ok {
			return q.setErr(fmt.Errorf("%w: key %q is not declared on class %q", types.ErrInvalidKey, key, q.class))
		}
		q.sorting = append(q.sorting, prefix+q.qualify(col))
	}
	return q
}

// Skip sets the number of rows skipped before the first returned row.
func (q *Query) Skip(n int) *Query {
	if q.err != nil {
		return q
	}
	if n < 0 {
		return q.setErr(fmt.Errorf("%w: skip must be a non-negative number, got %d", types.ErrValidation, n))
	}
	q.skip = n
	return q
}

// Limit caps the number of returned rows.
func (q *Query) Limit(n int) *Query {
	if q.err != nil {
		return q
	}
	if n < 0 {
		return q.setErr(fmt.Errorf("%w: limit must be a non-negative number, got %d", types.ErrValidation, n))
	}
	q.limit = n
	return q
}

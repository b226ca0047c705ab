package sqlgen

import (
	"fmt"
	"strings"

	"github.com/sqlbridge/sqlbridge/runtime/types"
)

// buildWhere compiles the constraint map into an AND-joined predicate
// list. Keys and values never reach the output without escaping.
func (g *Generator) buildWhere(constraints *types.ConstraintMap) (string, error) {
	if constraints == nil || constraints.Len() == 0 {
		return "", nil
	}

	var parts []string
	for _, key := range constraints.Keys() {
		for _, c := range constraints.Get(key) {
			fragment, err := g.constraintSQL(key, c)
			if err != nil {
				return "", err
			}
			parts = append(parts, fragment)
		}
	}
	return strings.Join(parts, " AND "), nil
}

// constraintSQL compiles one constraint entry. A key joining several
// keys with the any-of separator resolves to an OR-group over the
// individual keys.
func (g *Generator) constraintSQL(key string, c types.Constraint) (string, error) {
	keys := types.AnyOfKeys(key)
	if len(keys) > 1 {
		fragments := make([]string, 0, len(keys))
		for _, k := range keys {
			fragment, err := g.constraintSQL(k, c)
			if err != nil {
				return "", err
			}
			fragments = append(fragments, fragment)
		}
		return "(" + strings.Join(fragments, " OR ") + ")", nil
	}

	k := g.escapeKey(key)

	switch c.Kind {
	case types.KindEqualTo:
		return k + " = " + g.dialect.EscapeValue(c.Value), nil

	case types.KindNotEqualTo:
		return k + " <> " + g.dialect.EscapeValue(c.Value), nil

	case types.KindGreaterThan:
		return k + " > " + g.dialect.EscapeValue(c.Value), nil

	case types.KindGreaterThanOrEqualTo:
		return k + " >= " + g.dialect.EscapeValue(c.Value), nil

	case types.KindLessThan:
		return k + " < " + g.dialect.EscapeValue(c.Value), nil

	case types.KindLessThanOrEqualTo:
		return k + " <= " + g.dialect.EscapeValue(c.Value), nil

	case types.KindExists:
		if truthy(c.Value) {
			return k + " IS NOT NULL", nil
		}
		return k + " IS NULL", nil

	case types.KindContainedIn:
		list, err := g.valueList(key, c.Value)
		if err != nil {
			return "", err
		}
		return k + " IN (" + list + ")", nil

	case types.KindNotContainedIn:
		list, err := g.valueList(key, c.Value)
		if err != nil {
			return "", err
		}
		return k + " NOT IN (" + list + ")", nil

	case types.KindContainedInOrDoesNotExist:
		list, err := g.valueList(key, c.Value)
		if err != nil {
			return "", err
		}
		return "(" + k + " IS NULL OR " + k + " IN (" + list + "))", nil

	case types.KindStartsWith:
		return k + " LIKE " + g.dialect.EscapeValue(stringOf(c.Value)+"%"), nil

	case types.KindEndsWith:
		return k + " LIKE " + g.dialect.EscapeValue("%"+stringOf(c.Value)), nil

	case types.KindContains:
		return k + " LIKE " + g.dialect.EscapeValue("%"+stringOf(c.Value)+"%"), nil

	case types.KindContainsEither:
		return g.containsGroup(k, c.Value, " OR ")

	case types.KindContainsAll:
		return g.containsGroup(k, c.Value, " AND ")

	case types.KindFoundIn:
		sub, err := g.subquerySQL(c.Value)
		if err != nil {
			return "", err
		}
		return k + " IN (" + sub + ")", nil

	case types.KindNotFoundIn:
		sub, err := g.subquerySQL(c.Value)
		if err != nil {
			return "", err
		}
		return k + " NOT IN (" + sub + ")", nil

	case types.KindFoundInEither:
		return g.subqueryGroup(k, c.Value, " IN ", " OR ")

	case types.KindFoundInAll:
		return g.subqueryGroup(k, c.Value, " IN ", " AND ")

	case types.KindNotFoundInEither:
		return g.subqueryGroup(k, c.Value, " NOT IN ", " OR ")

	case types.KindNotFoundInAll:
		return g.subqueryGroup(k, c.Value, " NOT IN ", " AND ")

	default:
		return "", fmt.Errorf("%w: no fragment generator for constraint kind %d", types.ErrForbiddenOperation, c.Kind)
	}
}

// valueList escapes every element of a membership constraint value.
func (g *Generator) valueList(key string, value interface{}) (string, error) {
	values := listOf(value)
	if len(values) == 0 {
		return "", fmt.Errorf("%w: empty value list for key %q", types.ErrMissingConfiguration, key)
	}
	escaped := make([]string, 0, len(values))
	for _, v := range values {
		escaped = append(escaped, g.dialect.EscapeValue(v))
	}
	return strings.Join(escaped, ", "), nil
}

// containsGroup renders one LIKE fragment per term, joined with op.
func (g *Generator) containsGroup(escapedKey string, value interface{}, op string) (string, error) {
	values := listOf(value)
	if len(values) == 0 {
		return "", fmt.Errorf("%w: empty term list for contains group", types.ErrMissingConfiguration)
	}
	fragments := make([]string, 0, len(values))
	for _, v := range values {
		fragments = append(fragments, escapedKey+" LIKE "+g.dialect.EscapeValue("%"+stringOf(v)+"%"))
	}
	return "(" + strings.Join(fragments, op) + ")", nil
}

// subquerySQL compiles an embedded query value without the trailing
// statement comment.
func (g *Generator) subquerySQL(value interface{}) (string, error) {
	opts, ok := value.(*QueryOptions)
	if !ok {
		return "", fmt.Errorf("%w: sub-query constraint value is not compiled query options", types.ErrMissingConfiguration)
	}
	return g.generateSelect(opts)
}

// subqueryGroup renders one membership fragment per embedded query,
// joined with joinOp.
func (g *Generator) subqueryGroup(escapedKey string, value interface{}, membership, joinOp string) (string, error) {
	subs, ok := value.([]*QueryOptions)
	if !ok || len(subs) == 0 {
		return "", fmt.Errorf("%w: sub-query group constraint has no queries", types.ErrMissingConfiguration)
	}
	fragments := make([]string, 0, len(subs))
	for _, sub := range subs {
		sql, err := g.generateSelect(sub)
		if err != nil {
			return "", err
		}
		fragments = append(fragments, escapedKey+membership+"("+sql+")")
	}
	return "(" + strings.Join(fragments, joinOp) + ")", nil
}

func listOf(value interface{}) []interface{} {
	switch t := value.(type) {
	case []interface{}:
		return t
	case []string:
		out := make([]interface{}, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case nil:
		return nil
	default:
		return []interface{}{t}
	}
}

func stringOf(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

func truthy(value interface{}) bool {
	switch t := value.(type) {
	case bool:
		return t
	case int:
		return t != 0
	case nil:
		return true
	default:
		return true
	}
}

package builder

import (
	"fmt"
	"sort"

	"github.com/sqlbridge/sqlbridge/runtime/types"
)

// Where applies a nested key -> operator -> value filter in one call. A
// scalar value means equality; a map value holds operator names as
// accepted by KindFromName, plus "doesNotExist". Keys are processed in
// sorted order so the accumulated constraints stay deterministic.
func (q *Query) Where(filter map[string]interface{}) *Query {
	if q.err != nil {
		return q
	}
	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch value := filter[key].(type) {
		case map[string]interface{}:
			ops := make([]string, 0, len(value))
			for op := range value {
				ops = append(ops, op)
			}
			sort.Strings(ops)
			for _, op := range ops {
				if q.whereOp(key, op, value[op]); q.err != nil {
					return q
				}
			}
		default:
			q.EqualTo(key, value)
		}
		if q.err != nil {
			return q
		}
	}
	return q
}

func (q *Query) whereOp(key, op string, value interface{}) *Query {
	if op == "doesNotExist" {
		return q.constrain(key, types.KindExists, false)
	}
	kind, ok := types.KindFromName(op)
	if !ok {
		return q.setErr(fmt.Errorf("%w: unknown constraint kind %q", types.ErrForbiddenOperation, op))
	}
	switch kind {
	case types.KindContainedIn, types.KindNotContainedIn, types.KindContainedInOrDoesNotExist:
		return q.constrain(key, kind, types.NormalizeValues(listValue(value)))
	case types.KindContainsEither, types.KindContainsAll:
		return q.constrain(key, kind, listValue(value))
	default:
		return q.constrain(key, kind, types.NormalizeValue(value))
	}
}

func listValue(value interface{}) []interface{} {
	switch t := value.(type) {
	case []interface{}:
		return t
	case []string:
		out := make([]interface{}, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return []interface{}{t}
	}
}

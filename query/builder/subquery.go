package builder

import (
	"fmt"

	"github.com/sqlbridge/sqlbridge/query/sqlgen"
	"github.com/sqlbridge/sqlbridge/runtime/types"
)

// ToSubquery destructively narrows the query to a single-column
// projection over selectKey so it can be embedded inside another
// query's membership constraint. The receiver must not be reused for an
// unrelated projection afterwards.
func (q *Query) ToSubquery(selectKey string) *Query {
	if q.err != nil {
		return q
	}
	if !q.desc.HasKey(selectKey) {
		return q.setErr(fmt.Errorf("%w: key %q is not declared on class %q", types.ErrInvalidKey, selectKey, q.class))
	}
	q.selection = []string{selectKey}
	q.selected = true
	q.includes = nil
	return q
}

// compileSub narrows sub to selectKey and compiles it. Errors recorded
// on the sub-query propagate onto the receiver.
func (q *Query) compileSub(selectKey string, sub *Query) (*sqlgen.QueryOptions, error) {
	if sub == nil {
		return nil, fmt.Errorf("%w: sub-query constraint requires a query", types.ErrMissingConfiguration)
	}
	return sub.ToSubquery(selectKey).ToQueryOptions()
}

// FoundIn constrains key to the values of selectKey produced by sub.
func (q *Query) FoundIn(key, selectKey string, sub *Query) *Query {
	if q.err != nil {
		return q
	}
	opts, err := q.compileSub(selectKey, sub)
	if err != nil {
		return q.setErr(err)
	}
	return q.constrain(key, types.KindFoundIn, opts)
}

// NotFoundIn constrains key to avoid the values of selectKey produced
// by sub.
func (q *Query) NotFoundIn(key, selectKey string, sub *Query) *Query {
	if q.err != nil {
		return q
	}
	opts, err := q.compileSub(selectKey, sub)
	if err != nil {
		return q.setErr(err)
	}
	return q.constrain(key, types.KindNotFoundIn, opts)
}

func (q *Query) subqueryGroup(key, selectKey string, kind types.Kind, subs []*Query) *Query {
	if q.err != nil {
		return q
	}
	if len(subs) == 0 {
		return q.setErr(fmt.Errorf("%w: sub-query group constraint requires at least one query", types.ErrMissingConfiguration))
	}
	compiled := make([]*sqlgen.QueryOptions, 0, len(subs))
	for _, sub := range subs {
		opts, err := q.compileSub(selectKey, sub)
		if err != nil {
			return q.setErr(err)
		}
		compiled = append(compiled, opts)
	}
	return q.constrain(key, kind, compiled)
}

// FoundInEither constrains key to match any of the sub-queries.
func (q *Query) FoundInEither(key, selectKey string, subs ...*Query) *Query {
	return q.subqueryGroup(key, selectKey, types.KindFoundInEither, subs)
}

// FoundInAll constrains key to match every sub-query.
func (q *Query) FoundInAll(key, selectKey string, subs ...*Query) *Query {
	return q.subqueryGroup(key, selectKey, types.KindFoundInAll, subs)
}

// NotFoundInEither constrains key to miss at least one sub-query.
func (q *Query) NotFoundInEither(key, selectKey string, subs ...*Query) *Query {
	return q.subqueryGroup(key, selectKey, types.KindNotFoundInEither, subs)
}

// NotFoundInAll constrains key to miss every sub-query.
func (q *Query) NotFoundInAll(key, selectKey string, subs ...*Query) *Query {
	return q.subqueryGroup(key, selectKey, types.KindNotFoundInAll, subs)
}

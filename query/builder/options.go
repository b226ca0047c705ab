package builder

import (
	"fmt"

	"github.com/sqlbridge/sqlbridge/query/sqlgen"
	"github.com/sqlbridge/sqlbridge/runtime/types"
)

// ToQueryOptions resolves the accumulated builder state against the
// schema registry into the boundary value consumed by the generator.
// It is side-effect-free and may be called more than once; each call
// yields independently-scoped options.
func (q *Query) ToQueryOptions() (*sqlgen.QueryOptions, error) {
	if q.err != nil {
		return nil, q.err
	}

	selection := q.selection
	if !q.selected {
		selection = q.desc.DefaultSelection()
	}

	columns := make([]sqlgen.Column, 0, len(selection))
	for _, key := range selection {
		col, ok := q.desc.ColumnFor(key)
		if !ok {
			return nil, fmt.Errorf("%w: key %q is not declared on class %q", types.ErrInvalidKey, key, q.class)
		}
		columns = append(columns, sqlgen.Column{Key: q.qualify(col), Alias: key})
	}

	relations := make([]sqlgen.Relation, 0, len(q.includes))
	for _, alias := range q.includes {
		rel, ok := q.desc.RelationFor(alias)
		if !ok {
			return nil, fmt.Errorf("%w: relation %q is not declared on class %q", types.ErrInvalidKey, alias, q.class)
		}
		target, err := q.registry.Describe(rel.TargetClass)
		if err != nil {
			return nil, err
		}
		for _, key := range target.DefaultSelection() {
			col, ok := target.ColumnFor(key)
			if !ok {
				return nil, fmt.Errorf("%w: key %q is not declared on class %q", types.ErrInvalidKey, key, rel.TargetClass)
			}
			columns = append(columns, sqlgen.Column{
				Key:   alias + "." + col,
				Alias: alias + "." + key,
			})
		}
		relations = append(relations, sqlgen.Relation{
			Alias:        alias,
			Table:        target.Table,
			ParentColumn: rel.ParentColumn,
			ChildColumn:  rel.ChildColumn,
		})
	}

	constraints := cloneConstraints(q.constraints)

	// Tombstoned rows never surface from reads: unless the caller
	// constrained the deletion timestamp explicitly, require it null.
	if col, ok := q.desc.TimestampColumn(q.desc.DeletedKey); ok {
		if qcol := q.qualify(col); !constraints.Has(qcol) {
			constraints.Set(qcol, types.KindExists, false)
		}
	}

	sorting := make([]string, len(q.sorting))
	copy(sorting, q.sorting)

	return &sqlgen.QueryOptions{
		Source:      sqlgen.Source{Table: q.desc.Table, Alias: q.desc.Table},
		Columns:     columns,
		Relations:   relations,
		Constraints: constraints,
		Sorting:     sorting,
		Skip:        q.skip,
		Limit:       q.limit,
	}, nil
}

func cloneConstraints(src *types.ConstraintMap) *types.ConstraintMap {
	dst := types.NewConstraintMap()
	for _, key := range src.Keys() {
		for _, c := range src.Get(key) {
			dst.Set(key, c.Kind, c.Value)
		}
	}
	return dst
}

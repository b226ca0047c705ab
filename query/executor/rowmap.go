package executor

import (
	"strings"

	"github.com/sqlbridge/sqlbridge/runtime/types"
)

// MapRow re-nests relation-prefixed columns of one raw row. Every
// column named "alias.column" lands on a nested record stored under the
// alias; unprefixed columns go directly onto the top-level record. This
// is the exact inverse of the alias scheme used at SELECT compile time.
//
// When a scalar column shares its name with a relation alias, the
// relation record wins regardless of column order; the scalar value is
// discarded.
func MapRow(raw *types.KeyMap) *types.KeyMap {
	out := types.NewKeyMap()
	for _, p := range raw.Pairs() {
		i := strings.Index(p.Key, ".")
		if i <= 0 || i == len(p.Key)-1 {
			if _, ok := nestedAt(out, p.Key); ok {
				continue
			}
			out.Set(p.Key, p.Value)
			continue
		}

		alias, column := p.Key[:i], p.Key[i+1:]
		nested, ok := nestedAt(out, alias)
		if !ok {
			nested = types.NewKeyMap()
			out.Set(alias, nested)
		}
		nested.Set(column, p.Value)
	}
	return out
}

func nestedAt(m *types.KeyMap, alias string) (*types.KeyMap, bool) {
	v, ok := m.Get(alias)
	if !ok {
		return nil, false
	}
	nested, ok := v.(*types.KeyMap)
	return nested, ok
}

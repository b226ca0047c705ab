// Package schema describes which logical keys of a class are persisted
// columns, which are relations, and which are timestamps. A Description
// is built once per model and passed by reference into the query builder
// and the SQL generator; no reflection is involved.
package schema

import (
	"fmt"

	"github.com/sqlbridge/sqlbridge/runtime/types"
)

// Field maps a logical key onto its physical column.
type Field struct {
	Key    string `json:"key"`
	Column string `json:"column"`
}

// Relation declares a parent-to-child join reachable from a class. The
// alias is the name under which the joined columns are prefixed in
// output rows and re-nested on read.
type Relation struct {
	Alias        string `json:"alias"`
	TargetClass  string `json:"targetClass"`
	ParentColumn string `json:"parentColumn"`
	ChildColumn  string `json:"childColumn"`
}

// Description declares the persisted surface of one class.
type Description struct {
	Class      string     `json:"class"`
	Table      string     `json:"table"`
	Identifier Field      `json:"identifier"`
	Scalars    []Field    `json:"scalars"`
	Timestamps []Field    `json:"timestamps"`
	Relations  []Relation `json:"relations"`

	// Logical keys of the lifecycle timestamps; empty when undeclared.
	CreatedKey string `json:"createdKey"`
	UpdatedKey string `json:"updatedKey"`
	DeletedKey string `json:"deletedKey"`
}

// HasKey reports whether key is declared on the class. A compound key is
// declared when every constituent part is; an any-of key when every
// listed key is.
func (d *Description) HasKey(key string) bool {
	if types.IsCompound(key) {
		for _, part := range types.CompoundParts(key) {
			if !d.hasPlainKey(part) {
				return false
			}
		}
		return true
	}
	for _, part := range types.AnyOfKeys(key) {
		if !d.hasPlainKey(part) {
			return false
		}
	}
	return true
}

func (d *Description) hasPlainKey(key string) bool {
	if key == d.Identifier.Key {
		return true
	}
	for _, f := range d.Scalars {
		if f.Key == key {
			return true
		}
	}
	for _, f := range d.Timestamps {
		if f.Key == key {
			return true
		}
	}
	return false
}

// ColumnFor resolves a logical key to its physical column. Compound keys
// resolve part by part, re-joined with the compound separator.
func (d *Description) ColumnFor(key string) (string, bool) {
	if types.IsCompound(key) {
		parts := types.CompoundParts(key)
		cols := make([]string, 0, len(parts))
		for _, part := range parts {
			col, ok := d.columnForPlain(part)
			if !ok {
				return "", false
			}
			cols = append(cols, col)
		}
		joined := cols[0]
		for _, c := range cols[1:] {
			joined += types.CompoundSeparator + c
		}
		return joined, true
	}
	return d.columnForPlain(key)
}

func (d *Description) columnForPlain(key string) (string, bool) {
	if key == d.Identifier.Key {
		return d.Identifier.Column, true
	}
	for _, f := range d.Scalars {
		if f.Key == key {
			return f.Column, true
		}
	}
	for _, f := range d.Timestamps {
		if f.Key == key {
			return f.Column, true
		}
	}
	return "", false
}

// RelationFor returns the relation declared under alias.
func (d *Description) RelationFor(alias string) (Relation, bool) {
	for _, r := range d.Relations {
		if r.Alias == alias {
			return r, true
		}
	}
	return Relation{}, false
}

// TimestampColumn resolves one of the lifecycle timestamp keys to its
// column; ok is false when the class does not declare it.
func (d *Description) TimestampColumn(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	return d.columnForPlain(key)
}

// DefaultSelection is the selection used when a query never calls
// Select: the identifier, every declared scalar key and every declared
// timestamp key, in that order.
func (d *Description) DefaultSelection() []string {
	keys := make([]string, 0, 1+len(d.Scalars)+len(d.Timestamps))
	keys = append(keys, d.Identifier.Key)
	for _, f := range d.Scalars {
		keys = append(keys, f.Key)
	}
	for _, f := range d.Timestamps {
		keys = append(keys, f.Key)
	}
	return keys
}

// Registry resolves class names to their descriptions.
type Registry struct {
	classes map[string]*Description
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{classes: map[string]*Description{}}
}

// Register adds or replaces the description for its class.
func (r *Registry) Register(d *Description) {
	r.classes[d.Class] = d
}

// Describe returns the description for class.
func (r *Registry) Describe(class string) (*Description, error) {
	d, ok := r.classes[class]
	if !ok {
		return nil, fmt.Errorf("%w: class %q is not registered", types.ErrInvalidKey, class)
	}
	return d, nil
}

// Classes returns the registered class names.
func (r *Registry) Classes() []string {
	out := make([]string, 0, len(r.classes))
	for c := range r.classes {
		out = append(out, c)
	}
	return out
}

package types

// Kind identifies a constraint operator. The SQL generator keeps an
// exhaustive switch over these values; compiling a kind it does not know
// fails with ErrForbiddenOperation.
type Kind int

const (
	KindEqualTo Kind = iota
	KindNotEqualTo
	KindGreaterThan
	KindGreaterThanOrEqualTo
	KindLessThan
	KindLessThanOrEqualTo
	KindExists
	KindContainedIn
	KindNotContainedIn
	KindContainedInOrDoesNotExist
	KindStartsWith
	KindEndsWith
	KindContains
	KindContainsEither
	KindContainsAll
	KindFoundIn
	KindFoundInEither
	KindFoundInAll
	KindNotFoundIn
	KindNotFoundInEither
	KindNotFoundInAll
)

var kindNames = map[Kind]string{
	KindEqualTo:                   "equalTo",
	KindNotEqualTo:                "notEqualTo",
	KindGreaterThan:               "greaterThan",
	KindGreaterThanOrEqualTo:      "greaterThanOrEqualTo",
	KindLessThan:                  "lessThan",
	KindLessThanOrEqualTo:         "lessThanOrEqualTo",
	KindExists:                    "exists",
	KindContainedIn:               "containedIn",
	KindNotContainedIn:            "notContainedIn",
	KindContainedInOrDoesNotExist: "containedInOrDoesNotExist",
	KindStartsWith:                "startsWith",
	KindEndsWith:                  "endsWith",
	KindContains:                  "contains",
	KindContainsEither:            "containsEither",
	KindContainsAll:               "containsAll",
	KindFoundIn:                   "foundIn",
	KindFoundInEither:             "foundInEither",
	KindFoundInAll:                "foundInAll",
	KindNotFoundIn:                "notFoundIn",
	KindNotFoundInEither:          "notFoundInEither",
	KindNotFoundInAll:             "notFoundInAll",
}

// String returns the builder-facing name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindFromName resolves a builder-facing operator name, as accepted by
// Query.Where, back to its Kind. DoesNotExist maps onto KindExists with
// the boolean carried in the constraint value.
func KindFromName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Constraint is one accumulated filter entry: an operator and its value.
type Constraint struct {
	Kind  Kind
	Value interface{}
}

// ConstraintMap is an ordered mapping from key to the ordered list of
// constraints accumulated against that key. The same (key, kind) pair is
// never deduplicated: every Set appends.
type ConstraintMap struct {
	keys    []string
	entries map[string][]Constraint
}

// NewConstraintMap creates an empty ConstraintMap.
func NewConstraintMap() *ConstraintMap {
	return &ConstraintMap{
		keys:    []string{},
		entries: map[string][]Constraint{},
	}
}

// Set appends a constraint for key.
func (m *ConstraintMap) Set(key string, kind Kind, value interface{}) {
	if _, ok := m.entries[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = append(m.entries[key], Constraint{Kind: kind, Value: value})
}

// Get returns the constraints accumulated for key, in call order.
func (m *ConstraintMap) Get(key string) []Constraint {
	return m.entries[key]
}

// Has reports whether any constraint was set for key.
func (m *ConstraintMap) Has(key string) bool {
	_, ok := m.entries[key]
	return ok
}

// Keys returns the constrained keys in first-use order.
func (m *ConstraintMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of distinct constrained keys.
func (m *ConstraintMap) Len() int {
	return len(m.keys)
}

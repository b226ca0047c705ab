// Package types provides the runtime values shared by the query builder
// and the SQL generator: ordered key/value records, constraint state,
// compound keys and mutation operator wrappers.
package types

// Pair is a single key/value entry of a KeyMap.
type Pair struct {
	Key   string
	Value interface{}
}

// KeyMap is an ordered mapping from string key to arbitrary value.
// It is used both for write payloads and for shaping result rows.
// Insertion order is preserved; overwriting a key keeps its position.
type KeyMap struct {
	keys   []string
	values map[string]interface{}
}

// NewKeyMap creates an empty KeyMap.
func NewKeyMap() *KeyMap {
	return &KeyMap{
		keys:   []string{},
		values: map[string]interface{}{},
	}
}

// Set inserts or overwrites the value for key. An overwrite keeps the
// key's original position.
func (m *KeyMap) Set(key string, value interface{}) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it is present.
func (m *KeyMap) Get(key string) (interface{}, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *KeyMap) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Remove deletes key and its value.
func (m *KeyMap) Remove(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *KeyMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Values returns the values in insertion order.
func (m *KeyMap) Values() []interface{} {
	out := make([]interface{}, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.values[k])
	}
	return out
}

// Pairs returns the entries in insertion order.
func (m *KeyMap) Pairs() []Pair {
	out := make([]Pair, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, Pair{Key: k, Value: m.values[k]})
	}
	return out
}

// Len returns the number of entries.
func (m *KeyMap) Len() int {
	return len(m.keys)
}

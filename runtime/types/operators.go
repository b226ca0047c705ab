package types

// Increment is a write payload value that atomically adds Delta to the
// current column value. The SQL fragment must reference its own column,
// so the generator hands its escaping functions to the fragment builder
// at compile time; the wrapper itself stays dialect-free and portable.
type Increment struct {
	Delta float64
}

// JSONPatch is a write payload value that merges Data into an existing
// structured (JSON) column instead of replacing it. Like Increment it is
// late-bound: the dialect-specific merge expression is produced only
// when a generator compiles the statement.
type JSONPatch struct {
	Data map[string]interface{}
}

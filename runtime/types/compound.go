package types

import "strings"

// CompoundSeparator joins the physical columns of a compound key, e.g.
// "first_name+last_name". A compound key compiles to a concatenation
// expression instead of a single identifier.
const CompoundSeparator = "+"

// AnyOfSeparator joins several keys in a contains-family constraint,
// meaning "match if ANY of the listed keys contains the term". Resolved
// at compile time into an OR-group over the individual keys.
const AnyOfSeparator = "|"

// IsCompound reports whether key denotes a concatenation of several
// physical columns. Detection is structural: a compound key is any key
// carrying the separator.
func IsCompound(key string) bool {
	return strings.Contains(key, CompoundSeparator)
}

// CompoundParts returns the physical column names of a compound key in
// declaration order. For a plain key it returns the key itself.
func CompoundParts(key string) []string {
	parts := strings.Split(key, CompoundSeparator)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// AnyOfKeys splits a contains-family key into the individual keys it
// addresses. For a plain key it returns a single-element list.
func AnyOfKeys(key string) []string {
	parts := strings.Split(key, AnyOfSeparator)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package types

import "time"

// DateTimeLayout is the storage representation of timestamps.
const DateTimeLayout = "2006-01-02 15:04:05"

// NormalizeValue converts builder-facing values to their storage shape:
// booleans become 0/1 and times become UTC datetime strings. All other
// values pass through unchanged.
func NormalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case bool:
		if t {
			return 1
		}
		return 0
	case time.Time:
		return t.UTC().Format(DateTimeLayout)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(DateTimeLayout)
	default:
		return v
	}
}

// NormalizeValues applies NormalizeValue to every element of a list.
func NormalizeValues(values []interface{}) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = NormalizeValue(v)
	}
	return out
}

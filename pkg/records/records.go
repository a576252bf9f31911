// Package records defines the record types flowing through the import
// pipeline: a raw CSV row keyed by normalized header name, and a transformed
// row keyed by destination column name with typed values.
package records

// Record is a single row as column name -> value. Raw records hold strings
// (or nil for absent/empty cells); transformed records hold typed values
// (string, int, float64, bool, ISO date string, or nil).
type Record map[string]any

// Clone returns a shallow copy. Values are never mutated in place after
// transformation, so a shallow copy is sufficient.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the string value for key, or "" when the key is absent,
// nil, or not a string.
func (r Record) String(key string) string {
	if v, ok := r[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Int returns the int value for key plus a presence flag. int64 values are
// narrowed; other types report absent.
func (r Record) Int(key string) (int, bool) {
	switch n := r[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}

// Float returns the float64 value for key plus a presence flag. Integer
// values are widened.
func (r Record) Float(key string) (float64, bool) {
	switch n := r[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Empty reports whether key is absent, nil, or an empty string. Validators
// use this as the single definition of "missing".
func (r Record) Empty(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return true
	}
	s, isStr := v.(string)
	return isStr && s == ""
}

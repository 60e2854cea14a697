package models

import (
	"fmt"
)

// RawListing is one listing record exactly as the site's page-state JSON
// ships it. The schema is not ours and drifts between snapshots, so values
// are kept untyped and read through the accessors below.
type RawListing map[string]interface{}

// String returns the value under key coerced to a string, or "" when the
// key is absent or nil. Numeric values are rendered the way the site would
// print them.
func (r RawListing) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		// JSON numbers decode as float64; listing ids and room counts are
		// integers in practice.
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%g", s)
	default:
		return fmt.Sprint(v)
	}
}

// FirstString returns the first non-empty string among the given keys.
func (r RawListing) FirstString(keys ...string) string {
	for _, k := range keys {
		if s := r.String(k); s != "" {
			return s
		}
	}
	return ""
}
